package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Return statuses.
const (
	ReturnPending  = "pending"
	ReturnApproved = "approved"
	ReturnRejected = "rejected"
)

// Return item conditions. Only "good" items go back to stock on approval.
const (
	ConditionGood      = "good"
	ConditionDamaged   = "damaged"
	ConditionDefective = "defective"
)

// ReturnWindow is how long after the transaction date a return may be opened.
const ReturnWindow = 30 * 24 * time.Hour

// SalesReturn reverses specific line items of a completed transaction.
// Lifecycle: pending → approved | rejected. Only pending returns may be
// edited or deleted; at most one pending return per transaction.
type SalesReturn struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReturnNumber  string          `gorm:"uniqueIndex;not null"`
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending'"`
	Reason        *string
	RefundAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	RequestedBy   uuid.UUID       `gorm:"type:uuid;not null"`
	ApprovedBy    *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items       []ReturnItem      `gorm:"foreignKey:ReturnID"`
	Transaction *SalesTransaction `gorm:"foreignKey:TransactionID"`
}

// TotalQuantity sums the requested return quantity across items.
func (r *SalesReturn) TotalQuantity() int {
	total := 0
	for _, it := range r.Items {
		total += it.Quantity
	}
	return total
}

// ReturnItem references one SalesItem of the parent transaction.
// RefundAmount = (unit_price − item discount) × quantity.
type ReturnItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReturnID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SalesItemID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity     int             `gorm:"not null"`
	Condition    string          `gorm:"type:varchar(20);not null"`
	Reason       *string
	RefundAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
