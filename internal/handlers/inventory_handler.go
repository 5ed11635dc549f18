package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type InventoryHandler struct {
	db *gorm.DB
}

func NewInventoryHandler(db *gorm.DB) *InventoryHandler {
	return &InventoryHandler{db: db}
}

// --------- Requests ---------

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	Cost        float64 `json:"cost"`
	Stock       int     `json:"stock"`
	MinStock    int     `json:"min_stock"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Cost        *float64 `json:"cost,omitempty"`
	MinStock    *int     `json:"min_stock,omitempty"`
	Active      *bool    `json:"active,omitempty"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// --------- Handlers ---------

func (h *InventoryHandler) List(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))
	lowStock := c.Query("low_stock") == "true"

	q := h.db.Where("workshop_id = ?", workshopID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if lowStock {
		q = q.Where("stock <= min_stock")
	}

	var products []models.Product
	if err := q.Order("id ASC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *InventoryHandler) Create(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Stock < 0 {
		httperr.BadRequest(c, "invalid_stock", "Estoque inicial não pode ser negativo.")
		return
	}

	product := models.Product{
		WorkshopID:  workshopID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Cost:        req.Cost,
		Stock:       req.Stock,
		MinStock:    req.MinStock,
		Active:      true,
	}

	if err := h.db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *InventoryHandler) Update(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	id := c.Param("id")

	var product models.Product
	if err := h.db.
		Where("id = ? AND workshop_id = ?", id, workshopID).
		First(&product).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_product"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Cost != nil {
		product.Cost = *req.Cost
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := h.db.Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// AdjustStock é o ajuste manual (inventário, perda, compra); a baixa por
// venda acontece dentro da transação do item da ordem de serviço
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)
	id := c.Param("id")

	var req AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	result := h.db.
		Model(&models.Product{}).
		Where("id = ? AND workshop_id = ? AND stock + ? >= 0", id, workshopID, req.Delta).
		Update("stock", gorm.Expr("stock + ?", req.Delta))

	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_adjust_stock"})
		return
	}
	if result.RowsAffected == 0 {
		httperr.BadRequest(c, "insufficient_stock", "Ajuste deixaria o estoque negativo.")
		return
	}

	var product models.Product
	if err := h.db.
		Where("id = ? AND workshop_id = ?", id, workshopID).
		First(&product).Error; err != nil {

		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		return
	}

	writeAudit(h.db, workshopID, &userID, "stock_adjusted", "product", &product.ID, gin.H{
		"delta":  req.Delta,
		"reason": req.Reason,
	})

	c.JSON(http.StatusOK, product)
}
