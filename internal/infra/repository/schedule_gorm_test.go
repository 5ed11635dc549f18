package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/domain/schedule"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

func seedAppointment(
	t *testing.T,
	db *gorm.DB,
	workshopID uint,
	mechanicID, vehicleID *uint,
	start, end time.Time,
	status string,
) *models.Appointment {
	t.Helper()

	ap := &models.Appointment{
		WorkshopID: workshopID,
		ClientID:   1,
		ServiceID:  1,
		MechanicID: mechanicID,
		VehicleID:  vehicleID,
		StartTime:  start,
		EndTime:    end,
		Status:     status,
	}
	if err := db.Create(ap).Error; err != nil {
		t.Fatalf("failed to seed appointment: %v", err)
	}
	return ap
}

func TestFindConflicts(t *testing.T) {
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time {
		return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}

	setup := func(t *testing.T) (*gorm.DB, *ScheduleGormRepository, *models.Workshop) {
		db := newTestDB(t)
		shop := seedWorkshop(t, db, "central")
		return db, NewScheduleGormRepository(db), shop
	}

	t.Run("same mechanic overlapping is a conflict", func(t *testing.T) {
		db, repo, shop := setup(t)

		existing := seedAppointment(t, db, shop.ID, uintPtr(10), nil, at(0, 0), at(1, 0), "scheduled")

		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(0, 30),
			End:        at(1, 30),
			MechanicID: uintPtr(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.HasConflict {
			t.Fatal("expected conflict")
		}
		if len(res.ConflictingIDs) != 1 || res.ConflictingIDs[0] != existing.ID {
			t.Errorf("conflicting ids = %v, want [%d]", res.ConflictingIDs, existing.ID)
		}
	})

	t.Run("touching boundaries never conflict", func(t *testing.T) {
		db, repo, shop := setup(t)

		seedAppointment(t, db, shop.ID, uintPtr(10), nil, at(0, 0), at(1, 0), "scheduled")

		// novo começa exatamente quando o existente termina
		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(1, 0),
			End:        at(2, 0),
			MechanicID: uintPtr(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.HasConflict {
			t.Errorf("touching intervals must not conflict, got ids %v", res.ConflictingIDs)
		}
	})

	t.Run("inactive statuses never conflict", func(t *testing.T) {
		db, repo, shop := setup(t)

		for _, status := range []string{"cancelled", "completed", "pending"} {
			seedAppointment(t, db, shop.ID, uintPtr(10), nil, at(0, 0), at(1, 0), status)
		}

		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(0, 0),
			End:        at(1, 0),
			MechanicID: uintPtr(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.HasConflict {
			t.Errorf("inactive appointments must not conflict, got ids %v", res.ConflictingIDs)
		}
	})

	t.Run("no shared resource means no conflict", func(t *testing.T) {
		db, repo, shop := setup(t)

		seedAppointment(t, db, shop.ID, uintPtr(10), uintPtr(20), at(0, 0), at(1, 0), "scheduled")

		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(0, 0),
			End:        at(1, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.HasConflict {
			t.Error("no mechanic and no vehicle must never conflict")
		}
		if res.ConflictingIDs == nil {
			t.Error("conflicting ids must be an empty slice, not nil")
		}
	})

	t.Run("shared vehicle conflicts across mechanics", func(t *testing.T) {
		db, repo, shop := setup(t)

		existing := seedAppointment(t, db, shop.ID, uintPtr(10), uintPtr(20), at(0, 0), at(1, 0), "in_progress")

		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(0, 30),
			End:        at(1, 30),
			MechanicID: uintPtr(11),
			VehicleID:  uintPtr(20),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.HasConflict || res.ConflictingIDs[0] != existing.ID {
			t.Errorf("expected conflict on shared vehicle, got %v", res.ConflictingIDs)
		}
	})

	t.Run("exclude id removes the appointment itself", func(t *testing.T) {
		db, repo, shop := setup(t)

		existing := seedAppointment(t, db, shop.ID, uintPtr(10), nil, at(0, 0), at(1, 0), "scheduled")

		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(0, 15),
			End:        at(1, 15),
			MechanicID: uintPtr(10),
			ExcludeID:  &existing.ID,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.HasConflict {
			t.Errorf("appointment must not conflict with itself, got %v", res.ConflictingIDs)
		}
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		db, repo, shop := setup(t)
		other := seedWorkshop(t, db, "filial")

		seedAppointment(t, db, other.ID, uintPtr(10), nil, at(0, 0), at(1, 0), "scheduled")

		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(0, 0),
			End:        at(1, 0),
			MechanicID: uintPtr(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.HasConflict {
			t.Error("appointments from another workshop must never conflict")
		}
	})

	t.Run("multiple conflicts are all reported", func(t *testing.T) {
		db, repo, shop := setup(t)

		a := seedAppointment(t, db, shop.ID, uintPtr(10), nil, at(0, 0), at(1, 0), "scheduled")
		b := seedAppointment(t, db, shop.ID, uintPtr(10), nil, at(1, 0), at(2, 0), "client_confirmed")

		res, err := repo.FindConflicts(ctx, schedule.ConflictQuery{
			WorkshopID: shop.ID,
			Start:      at(0, 30),
			End:        at(1, 30),
			MechanicID: uintPtr(10),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.ConflictingIDs) != 2 {
			t.Fatalf("expected both appointments, got %v", res.ConflictingIDs)
		}
		if res.ConflictingIDs[0] != a.ID || res.ConflictingIDs[1] != b.ID {
			t.Errorf("ids out of order: %v", res.ConflictingIDs)
		}
	})
}

func TestUpdateAppointmentFields(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	shop := seedWorkshop(t, db, "central")
	repo := NewScheduleGormRepository(db)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ap := seedAppointment(t, db, shop.ID, uintPtr(10), nil, start, start.Add(time.Hour), "scheduled")

	t.Run("updates only the given fields", func(t *testing.T) {
		err := repo.UpdateAppointmentFields(ctx, shop.ID, ap.ID, map[string]any{
			"notes": "troca de óleo",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := repo.GetAppointment(ctx, shop.ID, ap.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Notes != "troca de óleo" {
			t.Errorf("notes = %q", got.Notes)
		}
		if !got.StartTime.Equal(ap.StartTime) {
			t.Error("start_time must not change")
		}
	})

	t.Run("wrong tenant is not found", func(t *testing.T) {
		err := repo.UpdateAppointmentFields(ctx, shop.ID+99, ap.ID, map[string]any{
			"notes": "x",
		})
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})
}

func TestScheduleInTransactionRollback(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	shop := seedWorkshop(t, db, "central")
	repo := NewScheduleGormRepository(db)

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	err := repo.InTransaction(ctx, func(tx schedule.Repository) error {
		ap := &models.Appointment{
			WorkshopID: shop.ID,
			ClientID:   1,
			ServiceID:  1,
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			Status:     "scheduled",
		}
		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int64
	db.Model(&models.Appointment{}).Count(&count)
	if count != 0 {
		t.Errorf("rollback must leave no appointment, found %d", count)
	}
}

func TestIsWithinWorkingHours(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewScheduleGormRepository(db)

	// terça-feira
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	wh := models.WorkingHours{
		MechanicID: 10,
		Weekday:    int(day.Weekday()),
		StartTime:  "08:00",
		EndTime:    "18:00",
		LunchStart: "12:00",
		LunchEnd:   "13:00",
		Active:     true,
	}
	if err := db.Create(&wh).Error; err != nil {
		t.Fatalf("failed to seed working hours: %v", err)
	}

	at := func(h, m int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.UTC)
	}

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"inside the day", at(9, 0), at(10, 0), true},
		{"before opening", at(7, 0), at(8, 0), false},
		{"after closing", at(17, 30), at(18, 30), false},
		{"over lunch", at(11, 30), at(12, 30), false},
		{"ends when lunch starts", at(11, 0), at(12, 0), true},
		{"starts when lunch ends", at(13, 0), at(14, 0), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.IsWithinWorkingHours(ctx, 10, tc.start, tc.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("IsWithinWorkingHours = %v, want %v", got, tc.want)
			}
		})
	}

	t.Run("day without schedule", func(t *testing.T) {
		other := day.AddDate(0, 0, 1)
		got, err := repo.IsWithinWorkingHours(ctx, 10,
			time.Date(other.Year(), other.Month(), other.Day(), 9, 0, 0, 0, time.UTC),
			time.Date(other.Year(), other.Month(), other.Day(), 10, 0, 0, 0, time.UTC),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Error("weekday without working hours must be unavailable")
		}
	})
}
