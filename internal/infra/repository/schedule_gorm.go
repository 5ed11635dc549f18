package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/domain/schedule"
	"github.com/OficinaProServices/oficina-api/internal/metrics"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type ScheduleGormRepository struct {
	db *gorm.DB
}

func NewScheduleGormRepository(db *gorm.DB) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db}
}

// --------------------------------------------------
// Workshop
// --------------------------------------------------

func (r *ScheduleGormRepository) GetWorkshopByID(
	ctx context.Context,
	id uint,
) (*models.Workshop, error) {

	var shop models.Workshop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// --------------------------------------------------
// References
// --------------------------------------------------

func (r *ScheduleGormRepository) GetService(
	ctx context.Context,
	workshopID uint,
	serviceID uint,
) (*models.ShopService, error) {

	var svc models.ShopService
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", serviceID, workshopID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *ScheduleGormRepository) GetClient(
	ctx context.Context,
	workshopID uint,
	clientID uint,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", clientID, workshopID).
		First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ScheduleGormRepository) GetVehicle(
	ctx context.Context,
	workshopID uint,
	vehicleID uint,
) (*models.Vehicle, error) {

	var v models.Vehicle
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", vehicleID, workshopID).
		First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ScheduleGormRepository) GetMechanic(
	ctx context.Context,
	workshopID uint,
	mechanicID uint,
) (*models.User, error) {

	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", mechanicID, workshopID).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// --------------------------------------------------
// Appointment (create / conflict)
// --------------------------------------------------

func (r *ScheduleGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

// FindConflicts seleciona agendamentos ativos do tenant cujo intervalo
// [start_time, end_time) cruza o proposto e que compartilham mecânico
// ou veículo. Sem recurso compartilhado, sobreposição de horário pura
// não é conflito.
func (r *ScheduleGormRepository) FindConflicts(
	ctx context.Context,
	q schedule.ConflictQuery,
) (schedule.ConflictResult, error) {

	res := schedule.ConflictResult{ConflictingIDs: []uint{}}

	if q.MechanicID == nil && q.VehicleID == nil {
		metrics.ConflictChecks.WithLabelValues("skipped").Inc()
		return res, nil
	}

	db := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("workshop_id = ?", q.WorkshopID).
		Where("status IN ?", schedule.ActiveStatusValues()).
		Where("start_time < ? AND end_time > ?", q.End, q.Start)

	switch {
	case q.MechanicID != nil && q.VehicleID != nil:
		db = db.Where("mechanic_id = ? OR vehicle_id = ?", *q.MechanicID, *q.VehicleID)
	case q.MechanicID != nil:
		db = db.Where("mechanic_id = ?", *q.MechanicID)
	default:
		db = db.Where("vehicle_id = ?", *q.VehicleID)
	}

	if q.ExcludeID != nil {
		db = db.Where("id <> ?", *q.ExcludeID)
	}

	var ids []uint
	if err := db.Order("start_time ASC").Pluck("id", &ids).Error; err != nil {
		metrics.ConflictChecks.WithLabelValues("error").Inc()
		return res, err
	}

	res.ConflictingIDs = ids
	res.HasConflict = len(ids) > 0

	if res.HasConflict {
		metrics.ConflictChecks.WithLabelValues("conflict").Inc()
	} else {
		metrics.ConflictChecks.WithLabelValues("clear").Inc()
	}

	return res, nil
}

// --------------------------------------------------
// Appointment (state change)
// --------------------------------------------------

func (r *ScheduleGormRepository) GetAppointment(
	ctx context.Context,
	workshopID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", appointmentID, workshopID).
		First(&ap).Error; err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *ScheduleGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *ScheduleGormRepository) UpdateAppointmentFields(
	ctx context.Context,
	workshopID uint,
	appointmentID uint,
	fields map[string]any,
) error {

	result := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND workshop_id = ?", appointmentID, workshopID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *ScheduleGormRepository) GetWorkingHours(
	ctx context.Context,
	mechanicID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("mechanic_id = ? AND weekday = ?", mechanicID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}

	return &wh, nil
}

func (r *ScheduleGormRepository) IsWithinWorkingHours(
	ctx context.Context,
	mechanicID uint,
	start time.Time,
	end time.Time,
) (bool, error) {

	weekday := int(start.Weekday())
	loc := start.Location()

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("mechanic_id = ? AND weekday = ?", mechanicID, weekday).
		First(&wh).Error; err != nil {
		return false, nil
	}

	if !wh.Active || wh.StartTime == "" || wh.EndTime == "" {
		return false, nil
	}

	parseHM := func(hm string) time.Time {
		t, _ := time.Parse("15:04", hm)
		return time.Date(
			start.Year(), start.Month(), start.Day(),
			t.Hour(), t.Minute(), 0, 0,
			loc,
		)
	}

	workStart := parseHM(wh.StartTime)
	workEnd := parseHM(wh.EndTime)

	if start.Before(workStart) || end.After(workEnd) {
		return false, nil
	}

	if wh.LunchStart != "" && wh.LunchEnd != "" {
		lunchStart := parseHM(wh.LunchStart)
		lunchEnd := parseHM(wh.LunchEnd)
		if schedule.Overlaps(start, end, lunchStart, lunchEnd) {
			return false, nil
		}
	}

	return true, nil
}

func (r *ScheduleGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	workshopID uint,
	mechanicID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("id", "start_time", "end_time").
		Where(
			"workshop_id = ? AND mechanic_id = ? AND status IN ? AND start_time >= ? AND start_time < ?",
			workshopID, mechanicID, schedule.ActiveStatusValues(), start, end,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *ScheduleGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	workshopID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Vehicle").
		Preload("Service").
		Where(
			"workshop_id = ? AND start_time >= ? AND start_time < ?",
			workshopID,
			start,
			end,
		).
		Order("start_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *ScheduleGormRepository) InTransaction(
	ctx context.Context,
	fn func(schedule.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ScheduleGormRepository{db: tx})
	})
}

// Compile-time check
var _ schedule.Repository = (*ScheduleGormRepository)(nil)
