package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
	DiscountBuyXGetY   = "buy_x_get_y"
)

// Discount is a promo code redeemed at checkout.
//
// UsageCount must track exactly the number of non-reversed transactions that
// consumed the code. When UsageCount reaches UsageLimit the code deactivates
// with AutoDeactivated=true; a void/return that drops usage back below the
// limit reactivates it only when AutoDeactivated is still set — a manually
// disabled code never comes back on its own.
type Discount struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string          `gorm:"uniqueIndex;not null"`
	Name          string          `gorm:"not null"`
	Type          string          `gorm:"type:varchar(20);not null"`
	Value         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MinimumAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// MaximumDiscount caps the computed amount; nil = uncapped
	MaximumDiscount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	UsageCount      int              `gorm:"not null;default:0"`
	// UsageLimit nil = unlimited
	UsageLimit      *int
	IsActive        bool `gorm:"not null;default:true"`
	AutoDeactivated bool `gorm:"not null;default:false"`
	StartDate       *time.Time
	EndDate         *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UsableAt reports whether the code can be redeemed at the given instant.
// The minimum-amount gate is checked by the pricing calculator, not here.
func (d *Discount) UsableAt(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if d.StartDate != nil && now.Before(*d.StartDate) {
		return false
	}
	if d.EndDate != nil && now.After(*d.EndDate) {
		return false
	}
	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit {
		return false
	}
	return true
}
