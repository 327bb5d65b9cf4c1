package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock movement types.
const (
	MovementSale        = "sale"
	MovementAdjustment  = "adjustment"
	MovementTransferIn  = "transfer_in"
	MovementTransferOut = "transfer_out"
	MovementReturn      = "return"
)

// Movement reference types.
const (
	RefTransaction = "transaction"
	RefReturn      = "return"
	RefTransfer    = "transfer"
	RefAdjustment  = "adjustment"
)

// Inventory is the stock balance for one (store, product) pair.
// Quantity ≥ 0 is a target, not a hard constraint: a sale decrements
// unconditionally, so oversell drives the balance negative.
type Inventory struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_store_product,priority:1"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_store_product,priority:2"`
	Quantity     int             `gorm:"not null;default:0"`
	AverageCost  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MinimumStock int             `gorm:"not null;default:0"`
	MaximumStock *int
	Location     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Store   *Store   `gorm:"foreignKey:StoreID"`
}

// StockMovement is one immutable entry in the inventory audit trail.
// Every quantity change on an Inventory row appends exactly one of these.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID        uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Type           string    `gorm:"type:varchar(20);not null"`
	// QuantityChange is signed: positive = in, negative = out
	QuantityChange int             `gorm:"not null"`
	QuantityBefore int             `gorm:"not null"`
	QuantityAfter  int             `gorm:"not null"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ReferenceType  *string         `gorm:"type:varchar(20)"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid"`
	Note           *string
	CreatedBy      *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
