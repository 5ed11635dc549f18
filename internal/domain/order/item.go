package order

import (
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type Kind string

const (
	KindService Kind = "service"
	KindProduct Kind = "product"
)

func IsValidKind(k Kind) bool {
	return k == KindService || k == KindProduct
}

// ValidateItem garante a exclusividade kind <-> referência:
// item service referencia um serviço e nunca um produto, e vice-versa.
// Quantidade > 0 e preço unitário >= 0.
func ValidateItem(it *models.OrderItem) error {
	switch Kind(it.Kind) {
	case KindService:
		if it.ServiceID == nil || it.ProductID != nil {
			return httperr.ErrBusiness("item_kind_mismatch")
		}
	case KindProduct:
		if it.ProductID == nil || it.ServiceID != nil {
			return httperr.ErrBusiness("item_kind_mismatch")
		}
	default:
		return httperr.ErrBusiness("invalid_item_kind")
	}

	if it.Quantity <= 0 {
		return httperr.ErrBusiness("invalid_quantity")
	}
	if it.UnitPrice < 0 {
		return httperr.ErrBusiness("invalid_unit_price")
	}

	return nil
}

// ItemTotal é a única fórmula de total de item do sistema
func ItemTotal(quantity int, unitPrice float64) float64 {
	return float64(quantity) * unitPrice
}
