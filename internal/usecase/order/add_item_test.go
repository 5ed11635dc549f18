package order

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OficinaProServices/oficina-api/internal/audit"
	"github.com/OficinaProServices/oficina-api/internal/httperr"
	infraRepo "github.com/OficinaProServices/oficina-api/internal/infra/repository"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

type fixture struct {
	db      *gorm.DB
	repo    *infraRepo.OrderGormRepository
	shop    *models.Workshop
	order   *models.ServiceOrder
	service *models.ShopService
	product *models.Product
	audit   *audit.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// :memory: é por conexão
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Workshop{},
		&models.Client{},
		&models.ShopService{},
		&models.Product{},
		&models.ServiceOrder{},
		&models.OrderItem{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	shop := &models.Workshop{Name: "Oficina Central", Slug: "central"}
	if err := db.Create(shop).Error; err != nil {
		t.Fatal(err)
	}

	o := &models.ServiceOrder{
		WorkshopID: shop.ID,
		Number:     "OS-TEST",
		ClientID:   1,
		Status:     models.OrderStatusOpen,
	}
	if err := db.Create(o).Error; err != nil {
		t.Fatal(err)
	}

	svc := &models.ShopService{
		WorkshopID:  shop.ID,
		Name:        "Alinhamento",
		DurationMin: 60,
		Price:       50,
		Active:      true,
	}
	if err := db.Create(svc).Error; err != nil {
		t.Fatal(err)
	}

	p := &models.Product{
		WorkshopID: shop.ID,
		Name:       "Filtro de óleo",
		Price:      10,
		Stock:      5,
		Active:     true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatal(err)
	}

	return &fixture{
		db:      db,
		repo:    infraRepo.NewOrderGormRepository(db),
		shop:    shop,
		order:   o,
		service: svc,
		product: p,
		audit:   audit.NewDispatcher(audit.New(db)),
	}
}

func (f *fixture) orderTotals(t *testing.T) (float64, float64, float64) {
	t.Helper()

	var o models.ServiceOrder
	if err := f.db.First(&o, f.order.ID).Error; err != nil {
		t.Fatalf("failed to reload order: %v", err)
	}
	return o.ServiceTotal, o.ProductTotal, o.Total
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("adds service item and updates totals", func(t *testing.T) {
		f := newFixture(t)
		uc := NewAddItem(f.repo, f.audit)

		item, err := uc.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "service",
			ServiceID:  &f.service.ID,
			Quantity:   2,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// preço e descrição vêm do catálogo quando não informados
		if item.UnitPrice != 50 {
			t.Errorf("unit_price = %v, want catalog price 50", item.UnitPrice)
		}
		if item.Description != "Alinhamento" {
			t.Errorf("description = %q", item.Description)
		}
		if item.Total != 100 {
			t.Errorf("item total = %v, want 100", item.Total)
		}

		serviceTotal, productTotal, total := f.orderTotals(t)
		if serviceTotal != 100 || productTotal != 0 || total != 100 {
			t.Errorf("order totals = %v/%v/%v, want 100/0/100", serviceTotal, productTotal, total)
		}
	})

	t.Run("adds product item and adjusts stock", func(t *testing.T) {
		f := newFixture(t)
		uc := NewAddItem(f.repo, f.audit)

		_, err := uc.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "product",
			ProductID:  &f.product.ID,
			Quantity:   3,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, productTotal, total := f.orderTotals(t)
		if productTotal != 30 || total != 30 {
			t.Errorf("order totals = %v/%v, want 30/30", productTotal, total)
		}

		var p models.Product
		f.db.First(&p, f.product.ID)
		if p.Stock != 2 {
			t.Errorf("stock = %d, want 2", p.Stock)
		}
	})

	t.Run("insufficient stock leaves nothing behind", func(t *testing.T) {
		f := newFixture(t)
		uc := NewAddItem(f.repo, f.audit)

		_, err := uc.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "product",
			ProductID:  &f.product.ID,
			Quantity:   8,
		})
		if !httperr.IsBusiness(err, "insufficient_stock") {
			t.Fatalf("expected insufficient_stock, got %v", err)
		}

		var count int64
		f.db.Model(&models.OrderItem{}).Count(&count)
		if count != 0 {
			t.Errorf("no item may be persisted, found %d", count)
		}

		var p models.Product
		f.db.First(&p, f.product.ID)
		if p.Stock != 5 {
			t.Errorf("stock must stay 5, got %d", p.Stock)
		}

		serviceTotal, productTotal, total := f.orderTotals(t)
		if serviceTotal != 0 || productTotal != 0 || total != 0 {
			t.Errorf("totals must stay 0, got %v/%v/%v", serviceTotal, productTotal, total)
		}
	})

	t.Run("rejects item on closed order", func(t *testing.T) {
		f := newFixture(t)
		f.db.Model(f.order).Update("status", models.OrderStatusCompleted)

		uc := NewAddItem(f.repo, f.audit)

		_, err := uc.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "service",
			ServiceID:  &f.service.ID,
			Quantity:   1,
		})
		if !httperr.IsBusiness(err, "order_not_open") {
			t.Errorf("expected order_not_open, got %v", err)
		}
	})

	t.Run("rejects kind without matching reference", func(t *testing.T) {
		f := newFixture(t)
		uc := NewAddItem(f.repo, f.audit)

		_, err := uc.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "service",
			Quantity:   1,
		})
		if !httperr.IsBusiness(err, "item_kind_mismatch") {
			t.Errorf("expected item_kind_mismatch, got %v", err)
		}
	})

	t.Run("explicit unit price wins over catalog", func(t *testing.T) {
		f := newFixture(t)
		uc := NewAddItem(f.repo, f.audit)

		price := 42.0
		item, err := uc.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "service",
			ServiceID:  &f.service.ID,
			Quantity:   1,
			UnitPrice:  &price,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.UnitPrice != 42 || item.Total != 42 {
			t.Errorf("item = %v/%v, want 42/42", item.UnitPrice, item.Total)
		}
	})
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("quantity change adjusts stock by the difference", func(t *testing.T) {
		f := newFixture(t)
		addUC := NewAddItem(f.repo, f.audit)
		updateUC := NewUpdateItem(f.repo, f.audit)

		item, err := addUC.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "product",
			ProductID:  &f.product.ID,
			Quantity:   2,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		quantity := 4
		updated, err := updateUC.Execute(ctx, UpdateItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			ItemID:     item.ID,
			Quantity:   &quantity,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Quantity != 4 || updated.Total != 40 {
			t.Errorf("item = %d/%v, want 4/40", updated.Quantity, updated.Total)
		}

		var p models.Product
		f.db.First(&p, f.product.ID)
		if p.Stock != 1 {
			t.Errorf("stock = %d, want 1", p.Stock)
		}

		_, productTotal, _ := f.orderTotals(t)
		if productTotal != 40 {
			t.Errorf("product_total = %v, want 40", productTotal)
		}
	})

	t.Run("rejects non positive quantity", func(t *testing.T) {
		f := newFixture(t)
		uc := NewUpdateItem(f.repo, f.audit)

		quantity := 0
		_, err := uc.Execute(ctx, UpdateItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			ItemID:     1,
			Quantity:   &quantity,
		})
		if !httperr.IsBusiness(err, "invalid_quantity") {
			t.Errorf("expected invalid_quantity, got %v", err)
		}
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock and zeroes totals", func(t *testing.T) {
		f := newFixture(t)
		addUC := NewAddItem(f.repo, f.audit)
		removeUC := NewRemoveItem(f.repo, f.audit)

		item, err := addUC.Execute(ctx, AddItemInput{
			WorkshopID: f.shop.ID,
			UserID:     1,
			OrderID:    f.order.ID,
			Kind:       "product",
			ProductID:  &f.product.ID,
			Quantity:   3,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := removeUC.Execute(ctx, f.shop.ID, 1, f.order.ID, item.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var p models.Product
		f.db.First(&p, f.product.ID)
		if p.Stock != 5 {
			t.Errorf("stock = %d, want 5 after restock", p.Stock)
		}

		serviceTotal, productTotal, total := f.orderTotals(t)
		if serviceTotal != 0 || productTotal != 0 || total != 0 {
			t.Errorf("totals = %v/%v/%v, want 0/0/0", serviceTotal, productTotal, total)
		}
	})

	t.Run("missing item is reported", func(t *testing.T) {
		f := newFixture(t)
		uc := NewRemoveItem(f.repo, f.audit)

		err := uc.Execute(ctx, f.shop.ID, 1, f.order.ID, 999)
		if !httperr.IsBusiness(err, "item_not_found") {
			t.Errorf("expected item_not_found, got %v", err)
		}
	})
}
