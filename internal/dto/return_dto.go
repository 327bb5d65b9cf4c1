package dto

import "github.com/shopspring/decimal"

type ReturnItemRequest struct {
	SalesItemID string  `json:"sales_item_id" validate:"required,uuid"`
	Quantity    int     `json:"quantity"      validate:"required,min=1"`
	Condition   string  `json:"condition"     validate:"required,oneof=good damaged defective"`
	Reason      *string `json:"reason"`
}

type CreateReturnRequest struct {
	TransactionID string              `json:"transaction_id" validate:"required,uuid"`
	Reason        *string             `json:"reason"`
	Items         []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateReturnRequest replaces the item lines of a pending return.
type UpdateReturnRequest struct {
	Reason *string             `json:"reason"`
	Items  []ReturnItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ReturnFilter struct {
	Status string `form:"status"` // pending | approved | rejected | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ReturnItemResponse struct {
	ID           string          `json:"id"`
	SalesItemID  string          `json:"sales_item_id"`
	ProductID    string          `json:"product_id"`
	Product      string          `json:"product"`
	Quantity     int             `json:"quantity"`
	Condition    string          `json:"condition"`
	Reason       *string         `json:"reason,omitempty"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type ReturnResponse struct {
	ID            string               `json:"id"`
	ReturnNumber  string               `json:"return_number"`
	TransactionID string               `json:"transaction_id"`
	Status        string               `json:"status"`
	Reason        *string              `json:"reason,omitempty"`
	RefundAmount  decimal.Decimal      `json:"refund_amount"`
	Items         []ReturnItemResponse `json:"items"`
	CreatedAt     string               `json:"created_at"`
}

type ReturnListResponse struct {
	Data  []ReturnResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
