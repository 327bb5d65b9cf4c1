package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SettleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// Discount is an optional per-item discount amount
	Discount decimal.Decimal `json:"discount" validate:"min=0"`
}

type SettlePaymentRequest struct {
	PaymentMethodID string          `json:"payment_method_id" validate:"required,uuid"`
	Amount          decimal.Decimal `json:"amount"            validate:"required"`
	ReferenceNumber *string         `json:"reference_number"`
}

type SettleRequest struct {
	StoreID    string                 `json:"store_id"    validate:"required,uuid"`
	CustomerID *string                `json:"customer_id" validate:"omitempty,uuid"`
	DiscountID *string                `json:"discount_id" validate:"omitempty,uuid"`
	Items      []SettleItemRequest    `json:"items"       validate:"required,min=1,dive"`
	Payments   []SettlePaymentRequest `json:"payments"    validate:"required,min=1,dive"`
}

type VoidRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// TransactionFilter is bound from the query string of GET /v1/transactions.
type TransactionFilter struct {
	Date    string `form:"date"`     // YYYY-MM-DD; empty = today
	StoreID string `form:"store_id"` // empty = all stores
	Status  string `form:"status,default=completed"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SalesItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Product        string          `json:"product"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

type SalesPaymentResponse struct {
	ID              string          `json:"id"`
	PaymentMethodID string          `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	FeeAmount       decimal.Decimal `json:"fee_amount"`
	ReferenceNumber *string         `json:"reference_number,omitempty"`
	Status          string          `json:"status"`
}

type TransactionResponse struct {
	ID                         string                 `json:"id"`
	TransactionNumber          string                 `json:"transaction_number"`
	StoreID                    string                 `json:"store_id"`
	CustomerID                 *string                `json:"customer_id,omitempty"`
	CashierID                  string                 `json:"cashier_id"`
	Subtotal                   decimal.Decimal        `json:"subtotal"`
	DiscountAmount             decimal.Decimal        `json:"discount_amount"`
	CustomerDiscountAmount     decimal.Decimal        `json:"customer_discount_amount"`
	CustomerDiscountPercentage decimal.Decimal        `json:"customer_discount_percentage"`
	TaxAmount                  decimal.Decimal        `json:"tax_amount"`
	TotalAmount                decimal.Decimal        `json:"total_amount"`
	PaidAmount                 decimal.Decimal        `json:"paid_amount"`
	ChangeAmount               decimal.Decimal        `json:"change_amount"`
	Status                     string                 `json:"status"`
	PaymentStatus              string                 `json:"payment_status"`
	DiscountID                 *string                `json:"discount_id,omitempty"`
	VoidReason                 *string                `json:"void_reason,omitempty"`
	Items                      []SalesItemResponse    `json:"items"`
	Payments                   []SalesPaymentResponse `json:"payments"`
	CreatedAt                  string                 `json:"created_at"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}
