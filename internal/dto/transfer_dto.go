package dto

type TransferItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CreateTransferRequest struct {
	FromStoreID string                `json:"from_store_id" validate:"required,uuid"`
	ToStoreID   string                `json:"to_store_id"   validate:"required,uuid"`
	Note        *string               `json:"note"`
	// Draft=true parks the transfer before submission; default goes straight
	// to pending (awaiting approval).
	Draft bool                  `json:"draft"`
	Items []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// UpdateTransferRequest replaces the lines of a draft/pending transfer.
type UpdateTransferRequest struct {
	Note  *string               `json:"note"`
	Items []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

type ReceiveItemRequest struct {
	TransferItemID   string `json:"transfer_item_id"  validate:"required,uuid"`
	ReceivedQuantity int    `json:"received_quantity" validate:"min=0"`
}

// ReceiveTransferRequest is optional per-line counts; lines not listed are
// received at their shipped quantity.
type ReceiveTransferRequest struct {
	Items []ReceiveItemRequest `json:"items" validate:"dive"`
}

type TransferFilter struct {
	Status  string `form:"status"`
	StoreID string `form:"store_id"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransferItemResponse struct {
	ID               string `json:"id"`
	ProductID        string `json:"product_id"`
	Product          string `json:"product"`
	Quantity         int    `json:"quantity"`
	ReceivedQuantity *int   `json:"received_quantity,omitempty"`
}

type TransferResponse struct {
	ID             string                 `json:"id"`
	TransferNumber string                 `json:"transfer_number"`
	FromStoreID    string                 `json:"from_store_id"`
	ToStoreID      string                 `json:"to_store_id"`
	Status         string                 `json:"status"`
	Note           *string                `json:"note,omitempty"`
	Items          []TransferItemResponse `json:"items"`
	CreatedAt      string                 `json:"created_at"`
}

type TransferListResponse struct {
	Data  []TransferResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
