package handlers

import (
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/audit"
)

// grava audit de forma best-effort; falha de audit nunca quebra a resposta
func writeAudit(
	db *gorm.DB,
	workshopID uint,
	userID *uint,
	action string,
	entity string,
	entityID *uint,
	metadata any,
) {
	if err := audit.New(db).Log(workshopID, userID, action, entity, entityID, metadata); err != nil {
		logrus.WithError(err).Error("audit error")
	}
}
