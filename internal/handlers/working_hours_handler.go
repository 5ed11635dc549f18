package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type WorkingHoursHandler struct {
	db *gorm.DB
}

func NewWorkingHoursHandler(db *gorm.DB) *WorkingHoursHandler {
	return &WorkingHoursHandler{db: db}
}

// --------- Requests ---------

type WorkingHoursEntry struct {
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
	Active     bool   `json:"active"`
}

type PutWorkingHoursRequest struct {
	MechanicID *uint               `json:"mechanic_id,omitempty"` // default: o próprio usuário
	Entries    []WorkingHoursEntry `json:"entries" binding:"required"`
}

// --------- Handlers ---------

func (h *WorkingHoursHandler) resolveMechanic(c *gin.Context, requested *uint) (uint, bool) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	if requested == nil {
		return userID, true
	}

	// mecânico informado precisa pertencer à oficina
	var mech models.User
	if err := h.db.
		Where("id = ? AND workshop_id = ?", *requested, workshopID).
		First(&mech).Error; err != nil {

		httperr.NotFound(c, "mechanic_not_found", "Mecânico não encontrado.")
		return 0, false
	}

	return mech.ID, true
}

func (h *WorkingHoursHandler) Get(c *gin.Context) {
	var requested *uint
	if s := c.Query("mechanic_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_mechanic", "mechanic_id inválido.")
			return
		}
		v := uint(id)
		requested = &v
	}

	mechanicID, ok := h.resolveMechanic(c, requested)
	if !ok {
		return
	}

	var hours []models.WorkingHours
	if err := h.db.
		Where("mechanic_id = ?", mechanicID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_working_hours"})
		return
	}

	c.JSON(http.StatusOK, hours)
}

// Put substitui a grade inteira do mecânico de uma vez
func (h *WorkingHoursHandler) Put(c *gin.Context) {
	var req PutWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	for _, e := range req.Entries {
		if e.Weekday < 0 || e.Weekday > 6 {
			httperr.BadRequest(c, "invalid_weekday", "weekday deve estar entre 0 e 6.")
			return
		}
	}

	mechanicID, ok := h.resolveMechanic(c, req.MechanicID)
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("mechanic_id = ?", mechanicID).
			Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}

		for _, e := range req.Entries {
			wh := models.WorkingHours{
				MechanicID: mechanicID,
				Weekday:    e.Weekday,
				StartTime:  e.StartTime,
				EndTime:    e.EndTime,
				LunchStart: e.LunchStart,
				LunchEnd:   e.LunchEnd,
				Active:     e.Active,
			}
			if err := tx.Create(&wh).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_working_hours"})
		return
	}

	var hours []models.WorkingHours
	if err := h.db.
		Where("mechanic_id = ?", mechanicID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_working_hours"})
		return
	}

	c.JSON(http.StatusOK, hours)
}
