package model

import (
	"time"

	"github.com/google/uuid"
)

// Transfer statuses.
const (
	TransferDraft     = "draft"
	TransferPending   = "pending"
	TransferApproved  = "approved"
	TransferShipped   = "shipped"
	TransferReceived  = "received"
	TransferCancelled = "cancelled"
	TransferRejected  = "rejected"
)

// StockTransfer moves stock between two stores through an approval workflow:
// draft/pending → approved → shipped → received, with pending → rejected and
// pending/approved → cancelled as terminal branches. Inventory only moves on
// ship (out of from-store) and receive (into to-store).
type StockTransfer struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransferNumber string    `gorm:"uniqueIndex;not null"`
	FromStoreID    uuid.UUID `gorm:"type:uuid;not null;index"`
	ToStoreID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Status         string    `gorm:"type:varchar(20);not null;default:'draft'"`
	Note           *string
	RequestedBy    uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy     *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt     *time.Time
	ShippedAt      *time.Time
	ReceivedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items     []TransferItem `gorm:"foreignKey:TransferID"`
	FromStore *Store         `gorm:"foreignKey:FromStoreID"`
	ToStore   *Store         `gorm:"foreignKey:ToStoreID"`
}

// Editable reports whether items/header may still change.
func (t *StockTransfer) Editable() bool {
	return t.Status == TransferDraft || t.Status == TransferPending
}

// TransferItem is one product line of a transfer. ReceivedQuantity may differ
// from Quantity when the receiving store counts a discrepancy; nil means the
// line has not been received yet.
type TransferItem struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransferID       uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null"`
	Quantity         int       `gorm:"not null"`
	ReceivedQuantity *int
	CreatedAt        time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
