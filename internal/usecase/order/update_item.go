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

// UpdateItemInput é patch parcial; o kind e as referências de um item
// são imutáveis. Para trocar de serviço/produto, remove e recria.
type UpdateItemInput struct {
	WorkshopID uint
	UserID     uint
	OrderID    uint
	ItemID     uint

	Quantity    *int
	UnitPrice   *float64
	Description *string
}

// ======================================================
// USE CASE
// ======================================================

type UpdateItem struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewUpdateItem(repo domain.Repository, audit *audit.Dispatcher) *UpdateItem {
	return &UpdateItem{repo: repo, audit: audit}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *UpdateItem) Execute(
	ctx context.Context,
	in UpdateItemInput,
) (*models.OrderItem, error) {

	if in.Quantity != nil && *in.Quantity <= 0 {
		return nil, httperr.ErrBusiness("invalid_quantity")
	}
	if in.UnitPrice != nil && *in.UnitPrice < 0 {
		return nil, httperr.ErrBusiness("invalid_unit_price")
	}

	var updated *models.OrderItem

	err := uc.repo.InTransaction(ctx, func(tx domain.Repository) error {

		o, err := tx.GetOrder(ctx, in.WorkshopID, in.OrderID)
		if err != nil {
			return httperr.ErrBusiness("order_not_found")
		}
		if o.Status != models.OrderStatusOpen {
			return httperr.ErrBusiness("order_not_open")
		}

		it, err := tx.GetItem(ctx, in.WorkshopID, in.ItemID)
		if err != nil || it.ServiceOrderID != in.OrderID {
			return httperr.ErrBusiness("item_not_found")
		}

		quantity := it.Quantity
		unitPrice := it.UnitPrice

		fields := map[string]any{}

		if in.Quantity != nil && *in.Quantity != it.Quantity {
			quantity = *in.Quantity
			fields["quantity"] = quantity

			// ajusta o estoque pela diferença
			if domain.Kind(it.Kind) == domain.KindProduct {
				delta := it.Quantity - quantity
				if err := tx.AdjustStock(ctx, in.WorkshopID, *it.ProductID, delta); err != nil {
					return err
				}
			}
		}

		if in.UnitPrice != nil {
			unitPrice = *in.UnitPrice
			fields["unit_price"] = unitPrice
		}

		if in.Description != nil {
			fields["description"] = *in.Description
		}

		if len(fields) == 0 {
			updated = it
			return nil
		}

		fields["total"] = domain.ItemTotal(quantity, unitPrice)

		if err := tx.UpdateItemFields(ctx, in.WorkshopID, in.ItemID, fields); err != nil {
			return err
		}

		if err := tx.RecalculateTotals(ctx, in.WorkshopID, in.OrderID); err != nil {
			return err
		}

		updated, err = tx.GetItem(ctx, in.WorkshopID, in.ItemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		WorkshopID: in.WorkshopID,
		UserID:     &in.UserID,
		Action:     "order_item_updated",
		Entity:     "order_item",
		EntityID:   &in.ItemID,
	})

	return updated, nil
}
