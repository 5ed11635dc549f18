package handlers

import (
	"time"

	"github.com/OficinaProServices/oficina-api/internal/models"
	"github.com/OficinaProServices/oficina-api/internal/timezone"
)

// resolve o timezone oficial da oficina
func locationFromShop(shop *models.Workshop) *time.Location {
	if shop != nil {
		return timezone.Location(shop.Timezone)
	}
	return timezone.Location("")
}

func parseDateInShop(shop *models.Workshop, dateStr string) (time.Time, error) {
	return time.ParseInLocation(
		"2006-01-02",
		dateStr,
		locationFromShop(shop),
	)
}
