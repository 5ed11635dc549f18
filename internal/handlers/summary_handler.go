package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/cache"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type SummaryHandler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewSummaryHandler(db *gorm.DB, rdb *redis.Client) *SummaryHandler {
	return &SummaryHandler{db: db, rdb: rdb}
}

type SummaryResponse struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`

	CompletedOrders       int64 `json:"completed_orders"`
	CompletedAppointments int64 `json:"completed_appointments"`
}

// Get agrega receita (ordens concluídas), despesas e lucro do período.
// Resultado vai para o redis com TTL curto; dados mudam pouco no intervalo.
func (h *SummaryHandler) Get(c *gin.Context) {
	workshopID := c.MustGet(middleware.ContextWorkshopID).(uint)
	ctx := c.Request.Context()

	// default: mês corrente
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "Data inválida, use YYYY-MM-DD.")
			return
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Data inválida, use YYYY-MM-DD.")
			return
		}
		to = t.Add(24 * time.Hour)
	}

	key := fmt.Sprintf(
		"summary:%d:%s:%s",
		workshopID,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
	)

	var cached SummaryResponse
	if cache.GetJSON(ctx, h.rdb, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	var revenue float64
	if err := h.db.
		Model(&models.ServiceOrder{}).
		Where("workshop_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			workshopID, models.OrderStatusCompleted, from, to).
		Select("COALESCE(SUM(total), 0)").
		Scan(&revenue).Error; err != nil {

		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	var expenses float64
	if err := h.db.
		Model(&models.Expense{}).
		Where("workshop_id = ? AND paid_at >= ? AND paid_at < ?", workshopID, from, to).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&expenses).Error; err != nil {

		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	var completedOrders int64
	if err := h.db.
		Model(&models.ServiceOrder{}).
		Where("workshop_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			workshopID, models.OrderStatusCompleted, from, to).
		Count(&completedOrders).Error; err != nil {

		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	var completedAppointments int64
	if err := h.db.
		Model(&models.Appointment{}).
		Where("workshop_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			workshopID, "completed", from, to).
		Count(&completedAppointments).Error; err != nil {

		httperr.Internal(c, "internal_error", "Erro interno.")
		return
	}

	resp := SummaryResponse{
		From:                  from,
		To:                    to,
		Revenue:               revenue,
		Expenses:              expenses,
		Profit:                revenue - expenses,
		CompletedOrders:       completedOrders,
		CompletedAppointments: completedAppointments,
	}

	cache.SetJSON(ctx, h.rdb, key, resp, 60*time.Second)

	c.JSON(http.StatusOK, resp)
}
