package db

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/config"
	"github.com/OficinaProServices/oficina-api/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

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
		logrus.Fatalf("failed to migrate: %v", err)
	}

	db.Exec(`
        UPDATE workshops
        SET timezone = 'America/Sao_Paulo'
        WHERE timezone IS NULL OR timezone = ''
    `)

	applyScheduleConstraints(db)

	return db
}

// applyScheduleConstraints cria as exclusion constraints que fecham a
// janela check-then-act do agendamento: duas reservas concorrentes podem
// passar pela checagem de conflito, mas o banco só deixa uma commitar.
// Só agendamentos ativos participam; horários encostados não colidem
// porque tstzrange é meio-aberto por padrão.
func applyScheduleConstraints(db *gorm.DB) {
	db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`)

	db.Exec(`
        DO $$ BEGIN
            ALTER TABLE appointments
            ADD CONSTRAINT appointments_mechanic_no_overlap
            EXCLUDE USING gist (
                mechanic_id WITH =,
                tstzrange(start_time, end_time) WITH &&
            )
            WHERE (
                mechanic_id IS NOT NULL
                AND status IN ('scheduled', 'in_progress', 'client_confirmed')
            );
        EXCEPTION
            WHEN duplicate_object THEN NULL;
            WHEN duplicate_table THEN NULL;
        END $$;
    `)

	db.Exec(`
        DO $$ BEGIN
            ALTER TABLE appointments
            ADD CONSTRAINT appointments_vehicle_no_overlap
            EXCLUDE USING gist (
                vehicle_id WITH =,
                tstzrange(start_time, end_time) WITH &&
            )
            WHERE (
                vehicle_id IS NOT NULL
                AND status IN ('scheduled', 'in_progress', 'client_confirmed')
            );
        EXCEPTION
            WHEN duplicate_object THEN NULL;
            WHEN duplicate_table THEN NULL;
        END $$;
    `)
}
