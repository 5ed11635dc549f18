package appointment

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OficinaProServices/oficina-api/internal/audit"
	"github.com/OficinaProServices/oficina-api/internal/config"
	domain "github.com/OficinaProServices/oficina-api/internal/domain/schedule"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	infraRepo "github.com/OficinaProServices/oficina-api/internal/infra/repository"
	"github.com/OficinaProServices/oficina-api/internal/models"
	"github.com/OficinaProServices/oficina-api/internal/notify"
)

type fixture struct {
	db       *gorm.DB
	repo     *infraRepo.ScheduleGormRepository
	shop     *models.Workshop
	client   *models.Client
	vehicle  *models.Vehicle
	mechanic *models.User
	service  *models.ShopService

	createUC     *CreateAppointment
	rescheduleUC *RescheduleAppointment
	cancelUC     *CancelAppointment
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// :memory: é por conexão
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Workshop{},
		&models.User{},
		&models.Client{},
		&models.Vehicle{},
		&models.ShopService{},
		&models.WorkingHours{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	// UTC evita depender do tzdata do ambiente
	shop := &models.Workshop{
		Name:              "Oficina Central",
		Slug:              "central",
		Timezone:          "UTC",
		MinAdvanceMinutes: 60,
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatal(err)
	}

	client := &models.Client{WorkshopID: shop.ID, Name: "João", Email: ""}
	if err := db.Create(client).Error; err != nil {
		t.Fatal(err)
	}

	vehicle := &models.Vehicle{WorkshopID: shop.ID, ClientID: client.ID, Plate: "ABC1D23"}
	if err := db.Create(vehicle).Error; err != nil {
		t.Fatal(err)
	}

	mechanic := &models.User{
		WorkshopID:   shop.ID,
		Name:         "Carlos",
		Email:        "carlos@central.oficina",
		PasswordHash: "x",
		Role:         "mechanic",
		Active:       true,
	}
	if err := db.Create(mechanic).Error; err != nil {
		t.Fatal(err)
	}

	// grade completa para que qualquer dia do teste esteja coberto
	for weekday := 0; weekday < 7; weekday++ {
		wh := models.WorkingHours{
			MechanicID: mechanic.ID,
			Weekday:    weekday,
			StartTime:  "00:00",
			EndTime:    "23:59",
			Active:     true,
		}
		if err := db.Create(&wh).Error; err != nil {
			t.Fatal(err)
		}
	}

	svc := &models.ShopService{
		WorkshopID:  shop.ID,
		Name:        "Troca de óleo",
		DurationMin: 60,
		Price:       120,
		Active:      true,
	}
	if err := db.Create(svc).Error; err != nil {
		t.Fatal(err)
	}

	repo := infraRepo.NewScheduleGormRepository(db)
	dispatcher := audit.NewDispatcher(audit.New(db))
	mailer := notify.NewMailer(&config.Config{})

	return &fixture{
		db:       db,
		repo:     repo,
		shop:     shop,
		client:   client,
		vehicle:  vehicle,
		mechanic: mechanic,
		service:  svc,

		createUC:     NewCreateAppointment(repo, dispatcher, mailer),
		rescheduleUC: NewRescheduleAppointment(repo, dispatcher),
		cancelUC:     NewCancelAppointment(repo, dispatcher),
	}
}

// dia útil uma semana à frente, longe da antecedência mínima
func (f *fixture) futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
}

func (f *fixture) input(timeStr string) CreateAppointmentInput {
	return CreateAppointmentInput{
		WorkshopID: f.shop.ID,
		UserID:     f.mechanic.ID,
		ClientID:   f.client.ID,
		ServiceID:  f.service.ID,
		VehicleID:  &f.vehicle.ID,
		MechanicID: &f.mechanic.ID,
		Date:       f.futureDate(),
		Time:       timeStr,
	}
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("creates scheduled appointment with service duration", func(t *testing.T) {
		f := newFixture(t)

		ap, err := f.createUC.Execute(ctx, f.input("10:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if ap.Status != "scheduled" {
			t.Errorf("status = %s, want scheduled", ap.Status)
		}
		if got := ap.EndTime.Sub(ap.StartTime); got != time.Hour {
			t.Errorf("duration = %v, want 1h from the catalog service", got)
		}
	})

	t.Run("overlapping slot for the same mechanic conflicts", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.createUC.Execute(ctx, f.input("10:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = f.createUC.Execute(ctx, f.input("10:30"))
		ce, ok := domain.AsConflict(err)
		if !ok {
			t.Fatalf("expected conflict error, got %v", err)
		}
		if len(ce.ConflictingIDs) != 1 || ce.ConflictingIDs[0] != first.ID {
			t.Errorf("conflicting ids = %v, want [%d]", ce.ConflictingIDs, first.ID)
		}
	})

	t.Run("touching slot does not conflict", func(t *testing.T) {
		f := newFixture(t)

		if _, err := f.createUC.Execute(ctx, f.input("10:00")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// começa exatamente quando o anterior termina
		if _, err := f.createUC.Execute(ctx, f.input("11:00")); err != nil {
			t.Fatalf("touching boundary must not conflict: %v", err)
		}
	})

	t.Run("cancelled appointment frees the slot", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.createUC.Execute(ctx, f.input("10:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.cancelUC.Execute(ctx, f.shop.ID, 1, first.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if _, err := f.createUC.Execute(ctx, f.input("10:00")); err != nil {
			t.Fatalf("cancelled appointment must not block the slot: %v", err)
		}
	})

	t.Run("rejects booking inside the minimum advance window", func(t *testing.T) {
		f := newFixture(t)

		now := time.Now().UTC().Add(10 * time.Minute)
		in := f.input(now.Format("15:04"))
		in.Date = now.Format("2006-01-02")

		_, err := f.createUC.Execute(ctx, in)
		if !httperr.IsBusiness(err, "too_soon") {
			t.Errorf("expected too_soon, got %v", err)
		}
	})

	t.Run("rejects unknown client", func(t *testing.T) {
		f := newFixture(t)

		in := f.input("10:00")
		in.ClientID = 999

		_, err := f.createUC.Execute(ctx, in)
		if !httperr.IsBusiness(err, "client_not_found") {
			t.Errorf("expected client_not_found, got %v", err)
		}
	})
}

func TestRescheduleAppointment(t *testing.T) {
	ctx := context.Background()

	t.Run("does not conflict with itself", func(t *testing.T) {
		f := newFixture(t)

		ap, err := f.createUC.Execute(ctx, f.input("10:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		notes := "cliente avisou atraso"
		got, err := f.rescheduleUC.Execute(ctx, RescheduleAppointmentInput{
			WorkshopID:    f.shop.ID,
			UserID:        1,
			AppointmentID: ap.ID,
			Notes:         &notes,
		})
		if err != nil {
			t.Fatalf("patch on same slot must not conflict: %v", err)
		}
		if got.Notes != notes {
			t.Errorf("notes = %q", got.Notes)
		}
	})

	t.Run("moving onto another appointment conflicts", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.createUC.Execute(ctx, f.input("10:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := f.createUC.Execute(ctx, f.input("14:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		newTime := "10:30"
		_, err = f.rescheduleUC.Execute(ctx, RescheduleAppointmentInput{
			WorkshopID:    f.shop.ID,
			UserID:        1,
			AppointmentID: second.ID,
			Time:          &newTime,
		})
		ce, ok := domain.AsConflict(err)
		if !ok {
			t.Fatalf("expected conflict, got %v", err)
		}
		if len(ce.ConflictingIDs) != 1 || ce.ConflictingIDs[0] != first.ID {
			t.Errorf("conflicting ids = %v, want [%d]", ce.ConflictingIDs, first.ID)
		}
	})

	t.Run("rejects cancel through reschedule", func(t *testing.T) {
		f := newFixture(t)

		ap, err := f.createUC.Execute(ctx, f.input("10:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		status := "cancelled"
		_, err = f.rescheduleUC.Execute(ctx, RescheduleAppointmentInput{
			WorkshopID:    f.shop.ID,
			UserID:        1,
			AppointmentID: ap.ID,
			Status:        &status,
		})
		if !httperr.IsBusiness(err, "invalid_status") {
			t.Errorf("expected invalid_status, got %v", err)
		}
	})

	t.Run("rejects patch on cancelled appointment", func(t *testing.T) {
		f := newFixture(t)

		ap, err := f.createUC.Execute(ctx, f.input("10:00"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.cancelUC.Execute(ctx, f.shop.ID, 1, ap.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		notes := "x"
		_, err = f.rescheduleUC.Execute(ctx, RescheduleAppointmentInput{
			WorkshopID:    f.shop.ID,
			UserID:        1,
			AppointmentID: ap.ID,
			Notes:         &notes,
		})
		if !httperr.IsBusiness(err, "invalid_state") {
			t.Errorf("expected invalid_state, got %v", err)
		}
	})
}
