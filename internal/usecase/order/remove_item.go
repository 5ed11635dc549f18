package order

import (
	"context"

	"github.com/OficinaProServices/oficina-api/internal/audit"
	domain "github.com/OficinaProServices/oficina-api/internal/domain/order"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type RemoveItem struct {
	repo  domain.Repository
	audit *audit.Dispatcher
}

func NewRemoveItem(repo domain.Repository, audit *audit.Dispatcher) *RemoveItem {
	return &RemoveItem{repo: repo, audit: audit}
}

func (uc *RemoveItem) Execute(
	ctx context.Context,
	workshopID uint,
	userID uint,
	orderID uint,
	itemID uint,
) error {

	err := uc.repo.InTransaction(ctx, func(tx domain.Repository) error {

		o, err := tx.GetOrder(ctx, workshopID, orderID)
		if err != nil {
			return httperr.ErrBusiness("order_not_found")
		}
		if o.Status != models.OrderStatusOpen {
			return httperr.ErrBusiness("order_not_open")
		}

		it, err := tx.GetItem(ctx, workshopID, itemID)
		if err != nil || it.ServiceOrderID != orderID {
			return httperr.ErrBusiness("item_not_found")
		}

		// devolve o produto ao estoque
		if domain.Kind(it.Kind) == domain.KindProduct && it.ProductID != nil {
			if err := tx.AdjustStock(ctx, workshopID, *it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		if err := tx.DeleteItem(ctx, workshopID, itemID); err != nil {
			return err
		}

		return tx.RecalculateTotals(ctx, workshopID, orderID)
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		WorkshopID: workshopID,
		UserID:     &userID,
		Action:     "order_item_removed",
		Entity:     "order_item",
		EntityID:   &itemID,
	})

	return nil
}
