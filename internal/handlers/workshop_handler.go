package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
	"github.com/OficinaProServices/oficina-api/internal/timezone"
)

type WorkshopHandler struct {
	db *gorm.DB
}

func NewWorkshopHandler(db *gorm.DB) *WorkshopHandler {
	return &WorkshopHandler{db: db}
}

type UpdateWorkshopConfigRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes"`
}

func (h *WorkshopHandler) GetMeWorkshop(c *gin.Context) {
	workshopIDVal, _ := c.Get(middleware.ContextWorkshopID)
	workshopID := workshopIDVal.(uint)

	var shop models.Workshop
	if err := h.db.First(&shop, workshopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "workshop_not_found", "Oficina não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_workshop", "Erro ao buscar dados da oficina.")
		return
	}

	c.JSON(http.StatusOK, shop)
}

func (h *WorkshopHandler) UpdateMeWorkshop(c *gin.Context) {
	workshopIDVal, _ := c.Get(middleware.ContextWorkshopID)
	workshopID := workshopIDVal.(uint)

	var shop models.Workshop
	if err := h.db.First(&shop, workshopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "workshop_not_found", "Oficina não encontrada.")
			return
		}
		httperr.Internal(c, "failed_to_get_workshop", "Erro ao buscar dados da oficina.")
		return
	}

	var req UpdateWorkshopConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos na requisição.")
		return
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Timezone inválido.")
			return
		}
		shop.Timezone = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		if *req.MinAdvanceMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_advance", "Antecedência mínima deve ser zero ou positiva (em minutos).")
			return
		}
		shop.MinAdvanceMinutes = *req.MinAdvanceMinutes
	}

	if err := h.db.Save(&shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_workshop", "Erro ao salvar as configurações da oficina.")
		return
	}

	c.JSON(http.StatusOK, shop)
}
