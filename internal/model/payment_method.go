package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod carries a fee schedule (percentage + fixed). Fees are
// recorded on each payment line but never charged to the customer.
type PaymentMethod struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string          `gorm:"uniqueIndex;not null"`
	Name          string          `gorm:"not null"`
	FeePercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	FeeFixed      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Fee computes the processing fee for one payment line.
func (m *PaymentMethod) Fee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(m.FeePercentage).Div(decimal.NewFromInt(100)).Add(m.FeeFixed)
}
