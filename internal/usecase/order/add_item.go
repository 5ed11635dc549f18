package order

import (
	"context"

	"github.com/OficinaProServices/oficina-api/internal/audit"
	domain "github.com/OficinaProServices/oficina-api/internal/domain/order"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type AddItemInput struct {
	WorkshopID uint
	UserID     uint
	OrderID    uint

	Kind      string
	ServiceID *uint
	ProductID *uint

	Description string
	Quantity    int

	// quando nil, usa o preço atual do catálogo/estoque
	UnitPrice *float64
}

// ======================================================
// USE CASE
// ======================================================

type AddItem struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewAddItem(repo domain.Repository, audit *audit.Dispatcher) *AddItem {
	return &AddItem{repo: repo, audit: audit}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *AddItem) Execute(
	ctx context.Context,
	in AddItemInput,
) (*models.OrderItem, error) {

	item := &models.OrderItem{
		WorkshopID:     in.WorkshopID,
		ServiceOrderID: in.OrderID,
		Kind:           in.Kind,
		ServiceID:      in.ServiceID,
		ProductID:      in.ProductID,
		Description:    in.Description,
		Quantity:       in.Quantity,
	}
	if in.UnitPrice != nil {
		item.UnitPrice = *in.UnitPrice
	}

	// Escrita do item, baixa de estoque e recálculo dos totais commitam
	// juntos ou nenhum commita
	err := uc.repo.InTransaction(ctx, func(tx domain.Repository) error {

		o, err := tx.GetOrder(ctx, in.WorkshopID, in.OrderID)
		if err != nil {
			return httperr.ErrBusiness("order_not_found")
		}
		if o.Status != models.OrderStatusOpen {
			return httperr.ErrBusiness("order_not_open")
		}

		switch domain.Kind(in.Kind) {
		case domain.KindService:
			if in.ServiceID == nil {
				return httperr.ErrBusiness("item_kind_mismatch")
			}
			svc, err := tx.GetService(ctx, in.WorkshopID, *in.ServiceID)
			if err != nil {
				return httperr.ErrBusiness("service_not_found")
			}
			if in.UnitPrice == nil {
				item.UnitPrice = svc.Price
			}
			if item.Description == "" {
				item.Description = svc.Name
			}

		case domain.KindProduct:
			if in.ProductID == nil {
				return httperr.ErrBusiness("item_kind_mismatch")
			}
			p, err := tx.GetProduct(ctx, in.WorkshopID, *in.ProductID)
			if err != nil {
				return httperr.ErrBusiness("product_not_found")
			}
			if in.UnitPrice == nil {
				item.UnitPrice = p.Price
			}
			if item.Description == "" {
				item.Description = p.Name
			}
		}

		item.Total = domain.ItemTotal(item.Quantity, item.UnitPrice)

		if err := domain.ValidateItem(item); err != nil {
			return err
		}

		// produto baixa estoque na mesma transação
		if domain.Kind(item.Kind) == domain.KindProduct {
			if err := tx.AdjustStock(ctx, in.WorkshopID, *item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.CreateItem(ctx, item); err != nil {
			return err
		}

		return tx.RecalculateTotals(ctx, in.WorkshopID, in.OrderID)
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		WorkshopID: in.WorkshopID,
		UserID:     &in.UserID,
		Action:     "order_item_added",
		Entity:     "order_item",
		EntityID:   &item.ID,
	})

	return item, nil
}
