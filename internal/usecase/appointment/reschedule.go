package appointment

import (
	"context"
	"time"

	"github.com/OficinaProServices/oficina-api/internal/audit"
	domain "github.com/OficinaProServices/oficina-api/internal/domain/schedule"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/models"
	"github.com/OficinaProServices/oficina-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

// RescheduleAppointmentInput é um patch parcial: só os campos não-nil
// são alterados, e o update parametrizado escreve exatamente esses.
type RescheduleAppointmentInput struct {
	WorkshopID    uint
	UserID        uint
	AppointmentID uint

	Date *string
	Time *string

	ServiceID  *uint
	MechanicID *uint
	VehicleID  *uint
	Notes      *string
	Status     *string

	// distingue "não mexer" de "remover o recurso"
	ClearMechanic bool
	ClearVehicle  bool
}

// ======================================================
// USE CASE
// ======================================================

type RescheduleAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRescheduleAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
) *RescheduleAppointment {
	return &RescheduleAppointment{
		repo:  repo,
		audit: audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*models.Appointment, error) {

	shop, err := uc.repo.GetWorkshopByID(ctx, in.WorkshopID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, in.WorkshopID, in.AppointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}

	current := domain.Status(ap.Status)
	if current == domain.StatusCancelled || current == domain.StatusCompleted {
		return nil, httperr.ErrBusiness("invalid_state")
	}

	loc := timezone.Location(shop.Timezone)

	// ------------------------------------------------
	// Estado prospectivo = atual + patch
	// ------------------------------------------------
	fields := map[string]any{}

	start := ap.StartTime
	end := ap.EndTime
	duration := ap.EndTime.Sub(ap.StartTime)

	if in.ServiceID != nil {
		svc, err := uc.repo.GetService(ctx, in.WorkshopID, *in.ServiceID)
		if err != nil {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		duration = time.Duration(svc.DurationMin) * time.Minute
		fields["service_id"] = svc.ID
	}

	if in.Date != nil || in.Time != nil {
		dateStr := start.In(loc).Format("2006-01-02")
		timeStr := start.In(loc).Format("15:04")
		if in.Date != nil {
			dateStr = *in.Date
		}
		if in.Time != nil {
			timeStr = *in.Time
		}

		start, err = time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
		if err != nil {
			return nil, httperr.ErrBusiness("invalid_date_or_time")
		}
	}

	end = start.Add(duration)
	if !start.Equal(ap.StartTime) || !end.Equal(ap.EndTime) {
		fields["start_time"] = start
		fields["end_time"] = end
	}

	mechanicID := ap.MechanicID
	switch {
	case in.ClearMechanic:
		mechanicID = nil
		fields["mechanic_id"] = nil
	case in.MechanicID != nil:
		if _, err := uc.repo.GetMechanic(ctx, in.WorkshopID, *in.MechanicID); err != nil {
			return nil, httperr.ErrBusiness("mechanic_not_found")
		}
		mechanicID = in.MechanicID
		fields["mechanic_id"] = *in.MechanicID
	}

	vehicleID := ap.VehicleID
	switch {
	case in.ClearVehicle:
		vehicleID = nil
		fields["vehicle_id"] = nil
	case in.VehicleID != nil:
		if _, err := uc.repo.GetVehicle(ctx, in.WorkshopID, *in.VehicleID); err != nil {
			return nil, httperr.ErrBusiness("vehicle_not_found")
		}
		vehicleID = in.VehicleID
		fields["vehicle_id"] = *in.VehicleID
	}

	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}

	status := current
	if in.Status != nil {
		status = domain.Status(*in.Status)
		if !domain.IsValid(status) ||
			status == domain.StatusCancelled ||
			status == domain.StatusCompleted {
			// cancelar/concluir têm rotas próprias, com timestamps
			return nil, httperr.ErrBusiness("invalid_status")
		}
		fields["status"] = string(status)
	}

	if len(fields) == 0 {
		return ap, nil
	}

	if mechanicID != nil {
		ok, err := uc.repo.IsWithinWorkingHours(ctx, *mechanicID, start, end)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, httperr.ErrBusiness("outside_working_hours")
		}
	}

	// ------------------------------------------------
	// Conflito + update parcial na mesma transação,
	// excluindo o próprio agendamento da checagem
	// ------------------------------------------------
	err = uc.repo.InTransaction(ctx, func(tx domain.Repository) error {
		if domain.IsActive(status) {
			res, err := tx.FindConflicts(ctx, domain.ConflictQuery{
				WorkshopID: in.WorkshopID,
				Start:      start,
				End:        end,
				MechanicID: mechanicID,
				VehicleID:  vehicleID,
				ExcludeID:  &in.AppointmentID,
			})
			if err != nil {
				return err
			}
			if res.HasConflict {
				return domain.ConflictError{ConflictingIDs: res.ConflictingIDs}
			}
		}

		err := tx.UpdateAppointmentFields(ctx, in.WorkshopID, in.AppointmentID, fields)
		if err != nil && httperr.IsExclusionConflict(err) {
			return domain.ConflictError{ConflictingIDs: []uint{}}
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		WorkshopID: in.WorkshopID,
		UserID:     &in.UserID,
		Action:     "appointment_rescheduled",
		Entity:     "appointment",
		EntityID:   &in.AppointmentID,
	})

	return uc.repo.GetAppointment(ctx, in.WorkshopID, in.AppointmentID)
}
