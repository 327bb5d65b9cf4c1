package dto

import "github.com/shopspring/decimal"

type AdjustStockRequest struct {
	StoreID        string  `json:"store_id"        validate:"required,uuid"`
	ProductID      string  `json:"product_id"      validate:"required,uuid"`
	QuantityChange int     `json:"quantity_change" validate:"required"`
	Note           *string `json:"note"`
}

type MovementFilter struct {
	StoreID   string `form:"store_id"   validate:"omitempty,uuid"`
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	Type      string `form:"type"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type InventoryResponse struct {
	StoreID      string          `json:"store_id"`
	ProductID    string          `json:"product_id"`
	Product      string          `json:"product"`
	Quantity     int             `json:"quantity"`
	AverageCost  decimal.Decimal `json:"average_cost"`
	MinimumStock int             `json:"minimum_stock"`
	Location     *string         `json:"location,omitempty"`
}

type MovementResponse struct {
	ID             string          `json:"id"`
	StoreID        string          `json:"store_id"`
	ProductID      string          `json:"product_id"`
	Type           string          `json:"type"`
	QuantityChange int             `json:"quantity_change"`
	QuantityBefore int             `json:"quantity_before"`
	QuantityAfter  int             `json:"quantity_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ReferenceType  *string         `json:"reference_type,omitempty"`
	ReferenceID    *string         `json:"reference_id,omitempty"`
	Note           *string         `json:"note,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type MovementListResponse struct {
	Data  []MovementResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// PriceResponse is returned by the public price-check endpoint.
type PriceResponse struct {
	ProductID string          `json:"product_id"`
	Barcode   string          `json:"barcode"`
	Name      string          `json:"name"`
	SellPrice decimal.Decimal `json:"sell_price"`
	InStock   int             `json:"in_stock"`
}
