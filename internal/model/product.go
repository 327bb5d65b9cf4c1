package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is master data consumed by the settlement core. Stock does NOT
// live here — per-store balances are in Inventory.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Barcode     string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Category    string          `gorm:"not null"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	SellPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Unit        string          `gorm:"not null;default:'unit'"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
