package schedule

import (
	"context"
	"time"

	"github.com/OficinaProServices/oficina-api/internal/models"
)

type Repository interface {
	// -------- Workshop --------
	GetWorkshopByID(
		ctx context.Context,
		id uint,
	) (*models.Workshop, error)

	// -------- Catalog / references --------
	GetService(
		ctx context.Context,
		workshopID uint,
		serviceID uint,
	) (*models.ShopService, error)

	GetClient(
		ctx context.Context,
		workshopID uint,
		clientID uint,
	) (*models.Client, error)

	GetVehicle(
		ctx context.Context,
		workshopID uint,
		vehicleID uint,
	) (*models.Vehicle, error)

	GetMechanic(
		ctx context.Context,
		workshopID uint,
		mechanicID uint,
	) (*models.User, error)

	// -------- Appointment (create / conflict) --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	FindConflicts(
		ctx context.Context,
		q ConflictQuery,
	) (ConflictResult, error)

	// -------- Appointment (state change) --------
	GetAppointment(
		ctx context.Context,
		workshopID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// UpdateAppointmentFields aplica um patch parcial: só as colunas
	// presentes no mapa são escritas, sempre escopado pelo workshop.
	UpdateAppointmentFields(
		ctx context.Context,
		workshopID uint,
		appointmentID uint,
		fields map[string]any,
	) error

	// -------- Availability --------
	GetWorkingHours(
		ctx context.Context,
		mechanicID uint,
		weekday int,
	) (*models.WorkingHours, error)

	IsWithinWorkingHours(
		ctx context.Context,
		mechanicID uint,
		start time.Time,
		end time.Time,
	) (bool, error)

	ListAppointmentsForDay(
		ctx context.Context,
		workshopID uint,
		mechanicID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		workshopID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// -------- Transaction --------
	// InTransaction executa fn dentro de uma transação; o Repository
	// recebido opera sobre a mesma transação. Erro de fn => rollback total.
	InTransaction(
		ctx context.Context,
		fn func(Repository) error,
	) error
}
