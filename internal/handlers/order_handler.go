package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
	usecase "github.com/OficinaProServices/oficina-api/internal/usecase/order"
)

type OrderHandler struct {
	db *gorm.DB

	addItemUC    *usecase.AddItem
	updateItemUC *usecase.UpdateItem
	removeItemUC *usecase.RemoveItem
}

func NewOrderHandler(
	db *gorm.DB,
	addItemUC *usecase.AddItem,
	updateItemUC *usecase.UpdateItem,
	removeItemUC *usecase.RemoveItem,
) *OrderHandler {
	return &OrderHandler{
		db:           db,
		addItemUC:    addItemUC,
		updateItemUC: updateItemUC,
		removeItemUC: removeItemUC,
	}
}

// --------- Requests ---------

type CreateOrderRequest struct {
	ClientID  uint   `json:"client_id" binding:"required"`
	VehicleID *uint  `json:"vehicle_id,omitempty"`
	Notes     string `json:"notes"`
}

type AddOrderItemRequest struct {
	Kind        string   `json:"kind" binding:"required"`
	ServiceID   *uint    `json:"service_id,omitempty"`
	ProductID   *uint    `json:"product_id,omitempty"`
	Description string   `json:"description"`
	Quantity    int      `json:"quantity" binding:"required,min=1"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
}

type UpdateOrderItemRequest struct {
	Quantity    *int     `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// --------- Helpers ---------

// numero curto e legível, único por índice do banco
func newOrderNumber() string {
	return "OS-" + strings.ToUpper(uuid.NewString()[:8])
}

func writeOrderError(c *gin.Context, err error) {
	if be, ok := httperr.AsBusiness(err); ok {
		if strings.HasSuffix(be.Code, "_not_found") {
			httperr.NotFound(c, be.Code, "Registro não encontrado.")
			return
		}
		httperr.BadRequest(c, be.Code, "Requisição inválida para o estado atual.")
		return
	}

	logrus.WithError(err).Error("order error")
	httperr.Internal(c, "internal_error", "Erro interno.")
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return 0, false
	}
	return uint(id), true
}

// --------- Handlers ---------

func (h *OrderHandler) Create(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var client models.Client
	if err := h.db.
		Where("id = ? AND workshop_id = ?", req.ClientID, workshopID).
		First(&client).Error; err != nil {

		httperr.NotFound(c, "client_not_found", "Cliente não encontrado.")
		return
	}

	if req.VehicleID != nil {
		var vehicle models.Vehicle
		if err := h.db.
			Where("id = ? AND workshop_id = ?", *req.VehicleID, workshopID).
			First(&vehicle).Error; err != nil {

			httperr.NotFound(c, "vehicle_not_found", "Veículo não encontrado.")
			return
		}
	}

	order := models.ServiceOrder{
		WorkshopID: workshopID,
		Number:     newOrderNumber(),
		ClientID:   client.ID,
		VehicleID:  req.VehicleID,
		Status:     models.OrderStatusOpen,
		Notes:      req.Notes,
	}

	if err := h.db.Create(&order).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			// colisão de número é raríssima; o cliente apenas tenta de novo
			httperr.BadRequest(c, "number_collision", "Tente novamente.")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_order"})
		return
	}

	writeAudit(h.db, workshopID, &userID, "order_created", "service_order", &order.ID, nil)

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) List(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	q := h.db.
		Preload("Client").
		Preload("Vehicle").
		Where("workshop_id = ?", workshopID)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		q = q.Where("client_id = ?", clientID)
	}

	var orders []models.ServiceOrder
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_orders"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var order models.ServiceOrder
	if err := h.db.
		Preload("Client").
		Preload("Vehicle").
		Preload("Items").
		Where("id = ? AND workshop_id = ?", id, workshopID).
		First(&order).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "order_not_found", "Ordem de serviço não encontrada.")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// Close conclui a ordem e congela os totais já persistidos
func (h *OrderHandler) Close(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	now := time.Now()

	result := h.db.
		Model(&models.ServiceOrder{}).
		Where("id = ? AND workshop_id = ? AND status = ?", id, workshopID, models.OrderStatusOpen).
		Updates(map[string]any{
			"status":       models.OrderStatusCompleted,
			"completed_at": now,
		})

	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_close_order"})
		return
	}
	if result.RowsAffected == 0 {
		httperr.BadRequest(c, "order_not_open", "Só ordens abertas podem ser concluídas.")
		return
	}

	writeAudit(h.db, workshopID, &userID, "order_completed", "service_order", &id, nil)

	var order models.ServiceOrder
	if err := h.db.
		Preload("Items").
		Where("id = ? AND workshop_id = ?", id, workshopID).
		First(&order).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

// Cancel devolve os produtos da ordem ao estoque na mesma transação
func (h *OrderHandler) Cancel(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var order models.ServiceOrder
		if err := tx.
			Where("id = ? AND workshop_id = ?", id, workshopID).
			First(&order).Error; err != nil {

			return httperr.ErrBusiness("order_not_found")
		}
		if order.Status != models.OrderStatusOpen {
			return httperr.ErrBusiness("order_not_open")
		}

		var items []models.OrderItem
		if err := tx.
			Where("service_order_id = ? AND workshop_id = ?", order.ID, workshopID).
			Find(&items).Error; err != nil {
			return err
		}

		for _, it := range items {
			if it.ProductID == nil {
				continue
			}
			if err := tx.
				Model(&models.Product{}).
				Where("id = ? AND workshop_id = ?", *it.ProductID, workshopID).
				Update("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}

		return tx.
			Model(&models.ServiceOrder{}).
			Where("id = ?", order.ID).
			Update("status", models.OrderStatusCancelled).Error
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	writeAudit(h.db, workshopID, &userID, "order_cancelled", "service_order", &id, nil)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --------- Itens ---------

func (h *OrderHandler) AddItem(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AddOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	item, err := h.addItemUC.Execute(c.Request.Context(), usecase.AddItemInput{
		WorkshopID:  workshopID,
		UserID:      userID,
		OrderID:     orderID,
		Kind:        req.Kind,
		ServiceID:   req.ServiceID,
		ProductID:   req.ProductID,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *OrderHandler) UpdateItem(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req UpdateOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	item, err := h.updateItemUC.Execute(c.Request.Context(), usecase.UpdateItemInput{
		WorkshopID:  workshopID,
		UserID:      userID,
		OrderID:     orderID,
		ItemID:      itemID,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Description: req.Description,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *OrderHandler) RemoveItem(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}

	err := h.removeItemUC.Execute(c.Request.Context(), workshopID, userID, orderID, itemID)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
