package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/domain/order"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/metrics"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

// --------------------------------------------------
// Order
// --------------------------------------------------

func (r *OrderGormRepository) GetOrder(
	ctx context.Context,
	workshopID uint,
	orderID uint,
) (*models.ServiceOrder, error) {

	var o models.ServiceOrder
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", orderID, workshopID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// --------------------------------------------------
// References
// --------------------------------------------------

func (r *OrderGormRepository) GetService(
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

func (r *OrderGormRepository) GetProduct(
	ctx context.Context,
	workshopID uint,
	productID uint,
) (*models.Product, error) {

	var p models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", productID, workshopID).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// --------------------------------------------------
// Items
// --------------------------------------------------

func (r *OrderGormRepository) GetItem(
	ctx context.Context,
	workshopID uint,
	itemID uint,
) (*models.OrderItem, error) {

	var it models.OrderItem
	if err := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", itemID, workshopID).
		First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *OrderGormRepository) CreateItem(
	ctx context.Context,
	it *models.OrderItem,
) error {
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *OrderGormRepository) UpdateItemFields(
	ctx context.Context,
	workshopID uint,
	itemID uint,
	fields map[string]any,
) error {

	result := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ? AND workshop_id = ?", itemID, workshopID).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *OrderGormRepository) DeleteItem(
	ctx context.Context,
	workshopID uint,
	itemID uint,
) error {

	result := r.db.WithContext(ctx).
		Where("id = ? AND workshop_id = ?", itemID, workshopID).
		Delete(&models.OrderItem{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// --------------------------------------------------
// Stock
// --------------------------------------------------

// AdjustStock usa um UPDATE condicional: o estoque nunca fica negativo
// mesmo com escritas concorrentes na mesma transação de item.
func (r *OrderGormRepository) AdjustStock(
	ctx context.Context,
	workshopID uint,
	productID uint,
	delta int,
) error {

	if delta == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND workshop_id = ? AND stock + ? >= 0", productID, workshopID, delta).
		Update("stock", gorm.Expr("stock + ?", delta))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return httperr.ErrBusiness("insufficient_stock")
	}

	return nil
}

// --------------------------------------------------
// Totals
// --------------------------------------------------

// RecalculateTotals refaz os agregados da ordem a partir dos itens
// atuais. Ausência de itens soma 0, nunca NULL. Roda sempre dentro da
// transação que mexeu nos itens, então leitores concorrentes nunca veem
// totais defasados.
func (r *OrderGormRepository) RecalculateTotals(
	ctx context.Context,
	workshopID uint,
	orderID uint,
) error {

	sumByKind := func(kind order.Kind) (float64, error) {
		var total float64
		err := r.db.WithContext(ctx).
			Model(&models.OrderItem{}).
			Where(
				"service_order_id = ? AND workshop_id = ? AND kind = ?",
				orderID, workshopID, string(kind),
			).
			Select("COALESCE(SUM(quantity * unit_price), 0)").
			Scan(&total).Error
		return total, err
	}

	serviceTotal, err := sumByKind(order.KindService)
	if err != nil {
		return err
	}

	productTotal, err := sumByKind(order.KindProduct)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&models.ServiceOrder{}).
		Where("id = ? AND workshop_id = ?", orderID, workshopID).
		Updates(map[string]any{
			"service_total": serviceTotal,
			"product_total": productTotal,
			"total":         serviceTotal + productTotal,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	metrics.TotalRecalculations.Inc()
	return nil
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *OrderGormRepository) InTransaction(
	ctx context.Context,
	fn func(order.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderGormRepository{db: tx})
	})
}

// Compile-time check
var _ order.Repository = (*OrderGormRepository)(nil)
