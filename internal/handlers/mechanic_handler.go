package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
	"github.com/OficinaProServices/oficina-api/internal/validators"
)

type MechanicHandler struct {
	db *gorm.DB
}

func NewMechanicHandler(db *gorm.DB) *MechanicHandler {
	return &MechanicHandler{db: db}
}

// --------- Requests ---------

type CreateMechanicRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type UpdateMechanicRequest struct {
	Name   *string `json:"name,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// --------- Handlers ---------

func (h *MechanicHandler) List(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	var mechanics []models.User
	if err := h.db.
		Where("workshop_id = ?", workshopID).
		Order("name ASC").
		Find(&mechanics).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_mechanics"})
		return
	}

	c.JSON(http.StatusOK, mechanics)
}

func (h *MechanicHandler) Create(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	var req CreateMechanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_email_domain",
			"message": "O domínio do e-mail informado não parece ser válido.",
		})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	mechanic := models.User{
		WorkshopID:   workshopID,
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hashed),
		Phone:        req.Phone,
		Role:         "mechanic",
		Active:       true,
	}

	if err := h.db.Create(&mechanic).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_mechanic"})
		return
	}

	c.JSON(http.StatusCreated, mechanic)
}

func (h *MechanicHandler) Update(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	id := c.Param("id")

	var mechanic models.User
	if err := h.db.
		Where("id = ? AND workshop_id = ?", id, workshopID).
		First(&mechanic).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "mechanic_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_mechanic"})
		return
	}

	var req UpdateMechanicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		mechanic.Name = *req.Name
	}
	if req.Phone != nil {
		mechanic.Phone = *req.Phone
	}
	if req.Active != nil {
		mechanic.Active = *req.Active
	}

	if err := h.db.Save(&mechanic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_mechanic"})
		return
	}

	c.JSON(http.StatusOK, mechanic)
}
