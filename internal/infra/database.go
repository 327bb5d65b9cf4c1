package infra

import (
	"fmt"

	"github.com/dimaswi/pos-sub002/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs AutoMigrate
// to create / update all tables. TranslateError is on so unique-constraint
// violations surface as gorm.ErrDuplicatedKey, which the number-allocation
// retry loop depends on.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations creates or updates the schema. Also used by integration tests
// against throwaway containers.
func RunMigrations(db *gorm.DB) error {
	// gen_random_uuid() needs pgcrypto on Postgres < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.User{},
		&model.Store{},
		&model.Product{},
		&model.Customer{},
		&model.CustomerDiscount{},
		&model.Discount{},
		&model.PaymentMethod{},
		&model.SalesTransaction{},
		&model.SalesItem{},
		&model.SalesPayment{},
		&model.Inventory{},
		&model.StockMovement{},
		&model.SalesReturn{},
		&model.ReturnItem{},
		&model.StockTransfer{},
		&model.TransferItem{},
	)
}
