package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type ExpenseHandler struct {
	db *gorm.DB
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
	return &ExpenseHandler{db: db}
}

// --------- Requests ---------

type CreateExpenseRequest struct {
	Description string  `json:"description" binding:"required"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount" binding:"required"`
	PaidAt      string  `json:"paid_at"` // YYYY-MM-DD, default hoje
	Notes       string  `json:"notes"`
}

type UpdateExpenseRequest struct {
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	PaidAt      *string  `json:"paid_at,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
}

// --------- Handlers ---------

func (h *ExpenseHandler) List(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	q := h.db.Where("workshop_id = ?", workshopID)

	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			q = q.Where("paid_at >= ?", t)
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// limite exclusivo no dia seguinte
			q = q.Where("paid_at < ?", t.Add(24*time.Hour))
		}
	}
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var expenses []models.Expense
	if err := q.Order("paid_at DESC").Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_expenses"})
		return
	}

	c.JSON(http.StatusOK, expenses)
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	paidAt := time.Now()
	if req.PaidAt != "" {
		t, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_paid_at"})
			return
		}
		paidAt = t
	}

	expense := models.Expense{
		WorkshopID:  workshopID,
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		PaidAt:      paidAt,
		Notes:       req.Notes,
	}

	if err := h.db.Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_expense"})
		return
	}

	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	id := c.Param("id")

	var expense models.Expense
	if err := h.db.
		Where("id = ? AND workshop_id = ?", id, workshopID).
		First(&expense).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "expense_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_expense"})
		return
	}

	var req UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.Amount != nil {
		expense.Amount = *req.Amount
	}
	if req.PaidAt != nil {
		t, err := time.Parse("2006-01-02", *req.PaidAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_paid_at"})
			return
		}
		expense.PaidAt = t
	}
	if req.Notes != nil {
		expense.Notes = *req.Notes
	}

	if err := h.db.Save(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_expense"})
		return
	}

	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) Delete(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	id := c.Param("id")

	result := h.db.
		Where("id = ? AND workshop_id = ?", id, workshopID).
		Delete(&models.Expense{})

	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_expense"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "expense_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
