package repository

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/OficinaProServices/oficina-api/internal/models"
)

// newTestDB abre um sqlite em memória por teste. MaxOpenConns(1) é
// obrigatório: cada conexão de um :memory: enxerga um banco diferente.
func newTestDB(t *testing.T) *gorm.DB {
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
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.Workshop{},
		&models.User{},
		&models.Client{},
		&models.Vehicle{},
		&models.ShopService{},
		&models.Product{},
		&models.WorkingHours{},
		&models.Appointment{},
		&models.ServiceOrder{},
		&models.OrderItem{},
		&models.Expense{},
		&models.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return db
}

func seedWorkshop(t *testing.T, db *gorm.DB, slug string) *models.Workshop {
	t.Helper()

	shop := &models.Workshop{
		Name:     "Oficina " + slug,
		Slug:     slug,
		Timezone: "America/Sao_Paulo",
	}
	if err := db.Create(shop).Error; err != nil {
		t.Fatalf("failed to seed workshop: %v", err)
	}
	return shop
}

func uintPtr(v uint) *uint { return &v }
