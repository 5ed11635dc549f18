package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type VehicleHandler struct {
	db *gorm.DB
}

func NewVehicleHandler(db *gorm.DB) *VehicleHandler {
	return &VehicleHandler{db: db}
}

// --------- Requests ---------

type CreateVehicleRequest struct {
	ClientID uint   `json:"client_id" binding:"required"`
	Plate    string `json:"plate" binding:"required"`
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Color    string `json:"color"`
}

type UpdateVehicleRequest struct {
	Plate *string `json:"plate,omitempty"`
	Brand *string `json:"brand,omitempty"`
	Model *string `json:"model,omitempty"`
	Year  *int    `json:"year,omitempty"`
	Color *string `json:"color,omitempty"`
}

// --------- Handlers ---------

func (h *VehicleHandler) List(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	q := h.db.Preload("Client").Where("workshop_id = ?", workshopID)

	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}

	if plate := strings.ToUpper(strings.TrimSpace(c.Query("plate"))); plate != "" {
		q = q.Where("UPPER(plate) LIKE ?", "%"+plate+"%")
	}

	var vehicles []models.Vehicle
	if err := q.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_vehicles"})
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

func (h *VehicleHandler) Create(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	var req CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	// dono do veículo precisa existir no mesmo tenant
	var client models.Client
	if err := h.db.
		Where("id = ? AND workshop_id = ?", req.ClientID, workshopID).
		First(&client).Error; err != nil {

		c.JSON(http.StatusNotFound, gin.H{"error": "client_not_found"})
		return
	}

	vehicle := models.Vehicle{
		WorkshopID: workshopID,
		ClientID:   client.ID,
		Plate:      strings.ToUpper(strings.TrimSpace(req.Plate)),
		Brand:      req.Brand,
		Model:      req.Model,
		Year:       req.Year,
		Color:      req.Color,
	}

	if err := h.db.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_vehicle"})
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	id := c.Param("id")

	var vehicle models.Vehicle
	if err := h.db.
		Where("id = ? AND workshop_id = ?", id, workshopID).
		First(&vehicle).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "vehicle_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_vehicle"})
		return
	}

	var req UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Plate != nil {
		vehicle.Plate = strings.ToUpper(strings.TrimSpace(*req.Plate))
	}
	if req.Brand != nil {
		vehicle.Brand = *req.Brand
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Color != nil {
		vehicle.Color = *req.Color
	}

	if err := h.db.Save(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_vehicle"})
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// Delete remove o veículo; agendamentos que o referenciam ficam com
// vehicle_id nulo (SET NULL), nunca somem
func (h *VehicleHandler) Delete(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	id := c.Param("id")

	result := h.db.
		Where("id = ? AND workshop_id = ?", id, workshopID).
		Delete(&models.Vehicle{})

	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_vehicle"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "vehicle_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
