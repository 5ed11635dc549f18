package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	domain "github.com/OficinaProServices/oficina-api/internal/domain/schedule"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/httpresp"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
	usecase "github.com/OficinaProServices/oficina-api/internal/usecase/appointment"
	"gorm.io/gorm"
)

type AppointmentHandler struct {
	db *gorm.DB

	createUC     *usecase.CreateAppointment
	rescheduleUC *usecase.RescheduleAppointment
	cancelUC     *usecase.CancelAppointment
	completeUC   *usecase.CompleteAppointment
	listDayUC    *usecase.ListAppointmentsByDate
	listMonthUC  *usecase.ListAppointmentsByMonth
	availUC      *usecase.GetAvailability
}

func NewAppointmentHandler(
	db *gorm.DB,
	createUC *usecase.CreateAppointment,
	rescheduleUC *usecase.RescheduleAppointment,
	cancelUC *usecase.CancelAppointment,
	completeUC *usecase.CompleteAppointment,
	listDayUC *usecase.ListAppointmentsByDate,
	listMonthUC *usecase.ListAppointmentsByMonth,
	availUC *usecase.GetAvailability,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:           db,
		createUC:     createUC,
		rescheduleUC: rescheduleUC,
		cancelUC:     cancelUC,
		completeUC:   completeUC,
		listDayUC:    listDayUC,
		listMonthUC:  listMonthUC,
		availUC:      availUC,
	}
}

// --------- Requests ---------

type CreateAppointmentRequest struct {
	ClientID   uint   `json:"client_id" binding:"required"`
	ServiceID  uint   `json:"service_id" binding:"required"`
	VehicleID  *uint  `json:"vehicle_id,omitempty"`
	MechanicID *uint  `json:"mechanic_id,omitempty"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Notes      string `json:"notes"`
}

type RescheduleAppointmentRequest struct {
	Date       *string `json:"date,omitempty"`
	Time       *string `json:"time,omitempty"`
	ServiceID  *uint   `json:"service_id,omitempty"`
	MechanicID *uint   `json:"mechanic_id,omitempty"`
	VehicleID  *uint   `json:"vehicle_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Status     *string `json:"status,omitempty"`

	ClearMechanic bool `json:"clear_mechanic"`
	ClearVehicle  bool `json:"clear_vehicle"`
}

// --------- Mapeamento de erros de agenda ---------

func writeScheduleError(c *gin.Context, err error) {
	if conflict, ok := domain.AsConflict(err); ok {
		httperr.Conflict(
			c,
			"time_conflict",
			"Horário indisponível: já existe agendamento no período.",
			conflict.ConflictingIDs,
		)
		return
	}

	if be, ok := httperr.AsBusiness(err); ok {
		if strings.HasSuffix(be.Code, "_not_found") {
			httperr.NotFound(c, be.Code, "Registro não encontrado.")
			return
		}
		httperr.BadRequest(c, be.Code, "Requisição inválida para o estado atual.")
		return
	}

	logrus.WithError(err).Error("schedule error")
	httperr.Internal(c, "internal_error", "Erro interno.")
}

// --------- Handlers ---------

func (h *AppointmentHandler) Create(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), usecase.CreateAppointmentInput{
		WorkshopID: workshopID,
		UserID:     userID,
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		VehicleID:  req.VehicleID,
		MechanicID: req.MechanicID,
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var req RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	ap, err := h.rescheduleUC.Execute(c.Request.Context(), usecase.RescheduleAppointmentInput{
		WorkshopID:    workshopID,
		UserID:        userID,
		AppointmentID: uint(id),
		Date:          req.Date,
		Time:          req.Time,
		ServiceID:     req.ServiceID,
		MechanicID:    req.MechanicID,
		VehicleID:     req.VehicleID,
		Notes:         req.Notes,
		Status:        req.Status,
		ClearMechanic: req.ClearMechanic,
		ClearVehicle:  req.ClearVehicle,
	})
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), workshopID, userID, uint(id))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	ap, err := h.completeUC.Execute(c.Request.Context(), workshopID, userID, uint(id))
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

// List devolve a agenda de um dia (?date=YYYY-MM-DD) no timezone da oficina
func (h *AppointmentHandler) List(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Informe ?date=YYYY-MM-DD.")
		return
	}

	var shop models.Workshop
	if err := h.db.First(&shop, workshopID).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	date, err := parseDateInShop(&shop, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida, use YYYY-MM-DD.")
		return
	}

	items, err := h.listDayUC.Execute(c.Request.Context(), workshopID, date)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	httpresp.List(c, items)
}

func (h *AppointmentHandler) ListMonth(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		httperr.BadRequest(c, "invalid_year", "Informe ?year=YYYY.")
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Informe ?month=1..12.")
		return
	}

	items, err := h.listMonthUC.Execute(c.Request.Context(), workshopID, year, month)
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	httpresp.List(c, items)
}

func (h *AppointmentHandler) Availability(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	mechanicID, err := strconv.ParseUint(c.Query("mechanic_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_mechanic", "Informe ?mechanic_id.")
		return
	}
	serviceID, err := strconv.ParseUint(c.Query("service_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service", "Informe ?service_id.")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Informe ?date=YYYY-MM-DD.")
		return
	}

	var shop models.Workshop
	if err := h.db.First(&shop, workshopID).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	date, err := parseDateInShop(&shop, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida, use YYYY-MM-DD.")
		return
	}

	slots, err := h.availUC.Execute(c.Request.Context(), domain.AvailabilityInput{
		WorkshopID: workshopID,
		MechanicID: uint(mechanicID),
		ServiceID:  uint(serviceID),
		Date:       date,
	})
	if err != nil {
		writeScheduleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
