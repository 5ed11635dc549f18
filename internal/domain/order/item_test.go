package order

import (
	"testing"

	"github.com/OficinaProServices/oficina-api/internal/httperr"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func TestValidateItem(t *testing.T) {
	cases := []struct {
		name     string
		item     models.OrderItem
		wantCode string
	}{
		{
			name: "valid service item",
			item: models.OrderItem{
				Kind: "service", ServiceID: uintPtr(1), Quantity: 2, UnitPrice: 50,
			},
		},
		{
			name: "valid product item",
			item: models.OrderItem{
				Kind: "product", ProductID: uintPtr(1), Quantity: 3, UnitPrice: 10,
			},
		},
		{
			name: "free of charge is allowed",
			item: models.OrderItem{
				Kind: "service", ServiceID: uintPtr(1), Quantity: 1, UnitPrice: 0,
			},
		},
		{
			name: "service item without service ref",
			item: models.OrderItem{
				Kind: "service", Quantity: 1, UnitPrice: 50,
			},
			wantCode: "item_kind_mismatch",
		},
		{
			name: "service item pointing at product",
			item: models.OrderItem{
				Kind: "service", ServiceID: uintPtr(1), ProductID: uintPtr(2), Quantity: 1, UnitPrice: 50,
			},
			wantCode: "item_kind_mismatch",
		},
		{
			name: "product item without product ref",
			item: models.OrderItem{
				Kind: "product", Quantity: 1, UnitPrice: 10,
			},
			wantCode: "item_kind_mismatch",
		},
		{
			name: "unknown kind",
			item: models.OrderItem{
				Kind: "labor", ServiceID: uintPtr(1), Quantity: 1, UnitPrice: 10,
			},
			wantCode: "invalid_item_kind",
		},
		{
			name: "zero quantity",
			item: models.OrderItem{
				Kind: "service", ServiceID: uintPtr(1), Quantity: 0, UnitPrice: 10,
			},
			wantCode: "invalid_quantity",
		},
		{
			name: "negative quantity",
			item: models.OrderItem{
				Kind: "product", ProductID: uintPtr(1), Quantity: -2, UnitPrice: 10,
			},
			wantCode: "invalid_quantity",
		},
		{
			name: "negative unit price",
			item: models.OrderItem{
				Kind: "service", ServiceID: uintPtr(1), Quantity: 1, UnitPrice: -5,
			},
			wantCode: "invalid_unit_price",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateItem(&tc.item)

			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !httperr.IsBusiness(err, tc.wantCode) {
				t.Errorf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestItemTotal(t *testing.T) {
	cases := []struct {
		quantity  int
		unitPrice float64
		want      float64
	}{
		{2, 50, 100},
		{3, 10, 30},
		{1, 0, 0},
		{4, 12.5, 50},
	}

	for _, tc := range cases {
		if got := ItemTotal(tc.quantity, tc.unitPrice); got != tc.want {
			t.Errorf("ItemTotal(%d, %v) = %v, want %v", tc.quantity, tc.unitPrice, got, tc.want)
		}
	}
}

func TestIsValidKind(t *testing.T) {
	if !IsValidKind(KindService) || !IsValidKind(KindProduct) {
		t.Error("service and product must be valid kinds")
	}
	if IsValidKind("labor") {
		t.Error("labor must not be a valid kind")
	}
}
