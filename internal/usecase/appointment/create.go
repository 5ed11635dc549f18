package appointment

import (
	"context"
	"time"

	"github.com/OficinaProServices/oficina-api/internal/audit"
	domain "github.com/OficinaProServices/oficina-api/internal/domain/schedule"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/metrics"
	"github.com/OficinaProServices/oficina-api/internal/models"
	"github.com/OficinaProServices/oficina-api/internal/notify"
	"github.com/OficinaProServices/oficina-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	WorkshopID uint
	UserID     uint

	ClientID  uint
	ServiceID uint

	VehicleID  *uint
	MechanicID *uint

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	mailer *notify.Mailer
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	mailer *notify.Mailer,
) *CreateAppointment {
	return &CreateAppointment{
		repo:   repo,
		audit:  audit,
		mailer: mailer,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	shop, err := uc.repo.GetWorkshopByID(ctx, in.WorkshopID)
	if err != nil {
		return nil, err
	}

	// Data/hora no timezone da oficina
	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(shop.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// Antecedência mínima
	minAdvance := shop.MinAdvanceMinutes
	if minAdvance <= 0 {
		minAdvance = 60
	}

	now := timezone.NowIn(shop.Timezone)
	if start.Before(now.Add(time.Duration(minAdvance) * time.Minute)) {
		return nil, httperr.ErrBusiness("too_soon")
	}

	// Serviço do catálogo define a duração
	svc, err := uc.repo.GetService(ctx, in.WorkshopID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness("service_not_found")
	}

	end := start.Add(time.Duration(svc.DurationMin) * time.Minute)

	// Referências sempre resolvidas dentro do tenant
	client, err := uc.repo.GetClient(ctx, in.WorkshopID, in.ClientID)
	if err != nil {
		return nil, httperr.ErrBusiness("client_not_found")
	}

	if in.VehicleID != nil {
		if _, err := uc.repo.GetVehicle(ctx, in.WorkshopID, *in.VehicleID); err != nil {
			return nil, httperr.ErrBusiness("vehicle_not_found")
		}
	}

	if in.MechanicID != nil {
		if _, err := uc.repo.GetMechanic(ctx, in.WorkshopID, *in.MechanicID); err != nil {
			return nil, httperr.ErrBusiness("mechanic_not_found")
		}

		ok, err := uc.repo.IsWithinWorkingHours(ctx, *in.MechanicID, start, end)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, httperr.ErrBusiness("outside_working_hours")
		}
	}

	// Checagem de conflito + insert na MESMA transação; a exclusion
	// constraint do banco cobre a corrida entre duas reservas simultâneas
	ap := &models.Appointment{
		WorkshopID: in.WorkshopID,
		ClientID:   client.ID,
		VehicleID:  in.VehicleID,
		MechanicID: in.MechanicID,
		ServiceID:  svc.ID,
		StartTime:  start,
		EndTime:    end,
		Status:     string(domain.InitialStatus()),
		Notes:      in.Notes,
	}

	err = uc.repo.InTransaction(ctx, func(tx domain.Repository) error {
		res, err := tx.FindConflicts(ctx, domain.ConflictQuery{
			WorkshopID: in.WorkshopID,
			Start:      start,
			End:        end,
			MechanicID: in.MechanicID,
			VehicleID:  in.VehicleID,
		})
		if err != nil {
			return err
		}
		if res.HasConflict {
			return domain.ConflictError{ConflictingIDs: res.ConflictingIDs}
		}

		if err := tx.CreateAppointment(ctx, ap); err != nil {
			if httperr.IsExclusionConflict(err) {
				return domain.ConflictError{ConflictingIDs: []uint{}}
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AppointmentsCreated.Inc()

	uc.audit.Dispatch(audit.Event{
		WorkshopID: in.WorkshopID,
		UserID:     &in.UserID,
		Action:     "appointment_created",
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})

	uc.mailer.SendAppointmentConfirmation(client.Email, client.Name, start)

	return ap, nil
}
