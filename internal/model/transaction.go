package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusVoided    = "voided"
	StatusRefunded  = "refunded"
	StatusCancelled = "cancelled"
	StatusDraft     = "draft"
)

// Payment line statuses.
const (
	PaymentCompleted = "completed"
	PaymentVoided    = "voided"
)

// RefundedStatusThreshold: a transaction flips to "refunded" once at least
// half its original quantity has been returned through approved returns.
const RefundedStatusThreshold = 0.5

// SalesTransaction is the settlement header. Once completed it is never
// edited — only status transitions (void, refund derivation) touch it.
//
// Invariant: TotalAmount = Subtotal − DiscountAmount − CustomerDiscountAmount
// + TaxAmount, always ≥ 0. TaxAmount is always zero in this system.
type SalesTransaction struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionNumber string    `gorm:"uniqueIndex;not null"`
	StoreID           uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID        *uuid.UUID `gorm:"type:uuid;index"`
	CashierID         uuid.UUID  `gorm:"type:uuid;not null"`
	TransactionDate   time.Time  `gorm:"not null;index"`

	Subtotal decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	// DiscountAmount is the promo-code portion
	DiscountAmount             decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CustomerDiscountAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CustomerDiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount                  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TotalAmount                decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	PaidAmount                 decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	ChangeAmount               decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`

	Status        string     `gorm:"type:varchar(20);not null;index"`
	PaymentStatus string     `gorm:"type:varchar(20);not null"`
	DiscountID    *uuid.UUID `gorm:"type:uuid;index"`

	VoidedAt   *time.Time
	VoidedBy   *uuid.UUID `gorm:"type:uuid"`
	VoidReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items    []SalesItem    `gorm:"foreignKey:TransactionID"`
	Payments []SalesPayment `gorm:"foreignKey:TransactionID"`
	Discount *Discount      `gorm:"foreignKey:DiscountID"`
	Customer *Customer      `gorm:"foreignKey:CustomerID"`
}

// TotalQuantity sums the original quantity across all line items.
func (t *SalesTransaction) TotalQuantity() int {
	total := 0
	for _, it := range t.Items {
		total += it.Quantity
	}
	return total
}

// SalesItem is one immutable line of a transaction.
// TotalAmount = Quantity*UnitPrice − DiscountAmount.
type SalesItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SalesPayment records one payment line. FeeAmount comes from the method's
// fee schedule and is informational only.
type SalesPayment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FeeAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ReferenceNumber *string
	Status          string `gorm:"type:varchar(20);not null;default:'completed'"`
	CreatedAt       time.Time

	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID"`
}

// DeriveStatus is the single source of truth for a transaction's terminal
// status given how much of it has been reversed. Both halves of the reversal
// engine (void and return approval) go through here so the two paths can
// never diverge.
func DeriveStatus(originalQty, returnedQty int, voided bool) string {
	if voided {
		return StatusVoided
	}
	if originalQty > 0 && float64(returnedQty)/float64(originalQty) >= RefundedStatusThreshold {
		return StatusRefunded
	}
	return StatusCompleted
}
