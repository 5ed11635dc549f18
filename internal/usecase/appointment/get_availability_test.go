package appointment

import (
	"context"
	"testing"
	"time"

	domain "github.com/OficinaProServices/oficina-api/internal/domain/schedule"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

func TestGetAvailability(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// mecânico com grade curta, só para este teste
	mech := &models.User{
		WorkshopID:   f.shop.ID,
		Name:         "Rafa",
		Email:        "rafa@central.oficina",
		PasswordHash: "x",
		Role:         "mechanic",
		Active:       true,
	}
	if err := f.db.Create(mech).Error; err != nil {
		t.Fatal(err)
	}

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	wh := models.WorkingHours{
		MechanicID: mech.ID,
		Weekday:    int(day.Weekday()),
		StartTime:  "08:00",
		EndTime:    "12:00",
		Active:     true,
	}
	if err := f.db.Create(&wh).Error; err != nil {
		t.Fatal(err)
	}

	// 09:00-10:00 ocupado
	busy := models.Appointment{
		WorkshopID: f.shop.ID,
		ClientID:   f.client.ID,
		ServiceID:  f.service.ID,
		MechanicID: &mech.ID,
		StartTime:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
		Status:     "scheduled",
	}
	if err := f.db.Create(&busy).Error; err != nil {
		t.Fatal(err)
	}

	uc := NewGetAvailability(f.repo)

	slots, err := uc.Execute(ctx, domain.AvailabilityInput{
		WorkshopID: f.shop.ID,
		MechanicID: mech.ID,
		ServiceID:  f.service.ID,
		Date:       day,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"08:00", "10:00", "11:00"}
	if len(slots) != len(want) {
		t.Fatalf("slots = %v, want starts %v", slots, want)
	}
	for i, w := range want {
		if slots[i].Start != w {
			t.Errorf("slot[%d].Start = %s, want %s", i, slots[i].Start, w)
		}
	}

	t.Run("day without schedule is empty, not nil", func(t *testing.T) {
		slots, err := uc.Execute(ctx, domain.AvailabilityInput{
			WorkshopID: f.shop.ID,
			MechanicID: mech.ID,
			ServiceID:  f.service.ID,
			Date:       day.AddDate(0, 0, 1),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slots == nil || len(slots) != 0 {
			t.Errorf("slots = %v, want empty slice", slots)
		}
	})
}
