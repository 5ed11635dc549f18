package order

import (
	"context"

	"github.com/OficinaProServices/oficina-api/internal/models"
)

type Repository interface {
	// -------- Order --------
	GetOrder(
		ctx context.Context,
		workshopID uint,
		orderID uint,
	) (*models.ServiceOrder, error)

	// -------- References --------
	GetService(
		ctx context.Context,
		workshopID uint,
		serviceID uint,
	) (*models.ShopService, error)

	GetProduct(
		ctx context.Context,
		workshopID uint,
		productID uint,
	) (*models.Product, error)

	// -------- Items --------
	GetItem(
		ctx context.Context,
		workshopID uint,
		itemID uint,
	) (*models.OrderItem, error)

	CreateItem(
		ctx context.Context,
		it *models.OrderItem,
	) error

	// UpdateItemFields aplica patch parcial no item, escopado pelo workshop
	UpdateItemFields(
		ctx context.Context,
		workshopID uint,
		itemID uint,
		fields map[string]any,
	) error

	DeleteItem(
		ctx context.Context,
		workshopID uint,
		itemID uint,
	) error

	// -------- Stock --------
	// AdjustStock soma delta ao estoque; falha com insufficient_stock
	// quando o resultado ficaria negativo.
	AdjustStock(
		ctx context.Context,
		workshopID uint,
		productID uint,
		delta int,
	) error

	// -------- Totals --------
	// RecalculateTotals soma quantity*unit_price dos itens por kind e
	// persiste service_total, product_total e total na ordem. Deve rodar
	// na mesma transação da escrita de item que o disparou.
	RecalculateTotals(
		ctx context.Context,
		workshopID uint,
		orderID uint,
	) error

	// -------- Transaction --------
	InTransaction(
		ctx context.Context,
		fn func(Repository) error,
	) error
}
