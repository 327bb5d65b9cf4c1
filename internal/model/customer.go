package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer carries an optional tier discount plus running purchase
// statistics updated on every completed settlement.
type Customer struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code               string    `gorm:"uniqueIndex;not null"`
	Name               string    `gorm:"index;not null"`
	Email              *string
	Phone              *string
	CustomerDiscountID *uuid.UUID      `gorm:"type:uuid;index"`
	TotalSpent         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalTransactions  int             `gorm:"not null;default:0"`
	LastTransactionAt  *time.Time
	Active             bool `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	CustomerDiscount *CustomerDiscount `gorm:"foreignKey:CustomerDiscountID"`
}

// CustomerDiscount is a membership tier: a percentage applied automatically
// on every eligible purchase, independent of promo codes.
type CustomerDiscount struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string          `gorm:"not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	MinimumPurchase    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// MaximumDiscount caps the computed amount; nil = uncapped
	MaximumDiscount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Active          bool             `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
