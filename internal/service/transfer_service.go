package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimaswi/pos-sub002/internal/apierror"
	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"
	"github.com/dimaswi/pos-sub002/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransferService drives the store-to-store movement workflow. Stock is only
// touched twice: Ship debits the sending store, Receive credits the receiving
// store at the counted quantity.
type TransferService interface {
	Create(ctx context.Context, requestedBy uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransferRequest) (*dto.TransferResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	Submit(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error)
	Approve(ctx context.Context, approvedBy uuid.UUID, id uuid.UUID) (*dto.TransferResponse, error)
	Reject(ctx context.Context, rejectedBy uuid.UUID, id uuid.UUID) (*dto.TransferResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error)
	Ship(ctx context.Context, shippedBy uuid.UUID, id uuid.UUID) (*dto.TransferResponse, error)
	Receive(ctx context.Context, receivedBy uuid.UUID, id uuid.UUID, req dto.ReceiveTransferRequest) (*dto.TransferResponse, error)

	Get(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error)
	List(ctx context.Context, filter dto.TransferFilter) (*dto.TransferListResponse, error)
}

type transferService struct {
	repo         repository.TransferRepository
	productRepo  repository.ProductRepository
	inventory    InventoryService
	numberPrefix string
}

func NewTransferService(
	repo repository.TransferRepository,
	productRepo repository.ProductRepository,
	inventory InventoryService,
	numberPrefix string,
) TransferService {
	return &transferService{
		repo:         repo,
		productRepo:  productRepo,
		inventory:    inventory,
		numberPrefix: numberPrefix,
	}
}

func (s *transferService) Create(ctx context.Context, requestedBy uuid.UUID, req dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	fromID, err := uuid.Parse(req.FromStoreID)
	if err != nil {
		return nil, apierror.Validation("invalid from_store_id")
	}
	toID, err := uuid.Parse(req.ToStoreID)
	if err != nil {
		return nil, apierror.Validation("invalid to_store_id")
	}
	if fromID == toID {
		return nil, apierror.Validation("source and destination store must differ")
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	status := model.TransferPending
	if req.Draft {
		status = model.TransferDraft
	}

	now := time.Now()
	var transfer model.StockTransfer
	txErr := withNumberRetry(func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			number, err := s.repo.NextNumber(ctx, tx, s.numberPrefix, now)
			if err != nil {
				return err
			}
			transfer = model.StockTransfer{
				TransferNumber: number,
				FromStoreID:    fromID,
				ToStoreID:      toID,
				Status:         status,
				Note:           req.Note,
				RequestedBy:    requestedBy,
				Items:          items,
			}
			return s.repo.Create(ctx, tx, &transfer)
		})
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apierror.SequenceExhausted(txErr)
		}
		return nil, apierror.Internal(txErr)
	}

	return transferToResponse(&transfer), nil
}

func (s *transferService) resolveItems(ctx context.Context, reqs []dto.TransferItemRequest) ([]model.TransferItem, error) {
	items := make([]model.TransferItem, 0, len(reqs))
	seen := make(map[uuid.UUID]bool, len(reqs))
	for _, rq := range reqs {
		pid, err := uuid.Parse(rq.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product_id %s", rq.ProductID)
		}
		if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
			return nil, apierror.Validation("product %s not found", rq.ProductID)
		}
		if seen[pid] {
			return nil, apierror.Validation("product %s listed more than once", rq.ProductID)
		}
		seen[pid] = true
		items = append(items, model.TransferItem{ProductID: pid, Quantity: rq.Quantity})
	}
	return items, nil
}

func (s *transferService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateTransferRequest) (*dto.TransferResponse, error) {
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("transfer not found")
	}
	if !transfer.Editable() {
		return nil, apierror.InvalidState("transfer with status %s cannot be edited", transfer.Status)
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ReplaceItemsTx(tx, transfer.ID, items); err != nil {
			return err
		}
		return s.repo.UpdateTx(tx, transfer.ID, map[string]interface{}{"note": req.Note})
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	transfer.Note = req.Note
	transfer.Items = items
	return transferToResponse(transfer), nil
}

func (s *transferService) Delete(ctx context.Context, id uuid.UUID) error {
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.Validation("transfer not found")
	}
	if !transfer.Editable() {
		return apierror.InvalidState("only draft or pending transfers can be deleted (current status: %s)", transfer.Status)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal(err)
	}
	return nil
}

// transition enforces the workflow edges and stamps the given fields.
func (s *transferService) transition(ctx context.Context, id uuid.UUID, from []string, to string, fields map[string]interface{}) (*model.StockTransfer, error) {
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("transfer not found")
	}
	allowed := false
	for _, f := range from {
		if transfer.Status == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apierror.InvalidState("transfer cannot move from %s to %s", transfer.Status, to)
	}

	fields["status"] = to
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateTx(tx, id, fields)
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}
	transfer.Status = to
	return transfer, nil
}

func (s *transferService) Submit(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.transition(ctx, id, []string{model.TransferDraft}, model.TransferPending, map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return transferToResponse(transfer), nil
}

func (s *transferService) Approve(ctx context.Context, approvedBy uuid.UUID, id uuid.UUID) (*dto.TransferResponse, error) {
	now := time.Now()
	transfer, err := s.transition(ctx, id,
		[]string{model.TransferDraft, model.TransferPending}, model.TransferApproved,
		map[string]interface{}{"approved_by": approvedBy, "approved_at": now})
	if err != nil {
		return nil, err
	}
	transfer.ApprovedBy = &approvedBy
	transfer.ApprovedAt = &now
	return transferToResponse(transfer), nil
}

func (s *transferService) Reject(ctx context.Context, rejectedBy uuid.UUID, id uuid.UUID) (*dto.TransferResponse, error) {
	now := time.Now()
	transfer, err := s.transition(ctx, id,
		[]string{model.TransferPending}, model.TransferRejected,
		map[string]interface{}{"approved_by": rejectedBy, "approved_at": now})
	if err != nil {
		return nil, err
	}
	return transferToResponse(transfer), nil
}

func (s *transferService) Cancel(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.transition(ctx, id,
		[]string{model.TransferPending, model.TransferApproved}, model.TransferCancelled,
		map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	return transferToResponse(transfer), nil
}

// Ship debits every line from the sending store. Like sales, the debit is
// unconditional; a store shipping more than it has on the books goes negative.
func (s *transferService) Ship(ctx context.Context, shippedBy uuid.UUID, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("transfer not found")
	}
	if transfer.Status != model.TransferApproved {
		return nil, apierror.InvalidState("only approved transfers can be shipped (current status: %s)", transfer.Status)
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range transfer.Items {
			note := fmt.Sprintf("transfer %s shipped", transfer.TransferNumber)
			if _, err := s.inventory.ApplyChangeTx(tx, StockChange{
				StoreID:       transfer.FromStoreID,
				ProductID:     item.ProductID,
				Delta:         -item.Quantity,
				Type:          model.MovementTransferOut,
				ReferenceType: model.RefTransfer,
				ReferenceID:   transfer.ID,
				Note:          &note,
				CreatedBy:     &shippedBy,
			}); err != nil {
				return err
			}
		}
		return s.repo.UpdateTx(tx, id, map[string]interface{}{
			"status":     model.TransferShipped,
			"shipped_at": now,
		})
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	transfer.Status = model.TransferShipped
	transfer.ShippedAt = &now
	return transferToResponse(transfer), nil
}

// Receive credits the destination store. Counted quantities may come in lower
// than shipped (shrinkage in transit); lines not listed in the request are
// received in full. A count above the shipped quantity is rejected.
func (s *transferService) Receive(ctx context.Context, receivedBy uuid.UUID, id uuid.UUID, req dto.ReceiveTransferRequest) (*dto.TransferResponse, error) {
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("transfer not found")
	}
	if transfer.Status != model.TransferShipped {
		return nil, apierror.InvalidState("only shipped transfers can be received (current status: %s)", transfer.Status)
	}

	counts := make(map[uuid.UUID]int, len(req.Items))
	for _, rq := range req.Items {
		itemID, err := uuid.Parse(rq.TransferItemID)
		if err != nil {
			return nil, apierror.Validation("invalid transfer_item_id %s", rq.TransferItemID)
		}
		counts[itemID] = rq.ReceivedQuantity
	}

	byID := make(map[uuid.UUID]*model.TransferItem, len(transfer.Items))
	for i := range transfer.Items {
		byID[transfer.Items[i].ID] = &transfer.Items[i]
	}
	for itemID, qty := range counts {
		line, ok := byID[itemID]
		if !ok {
			return nil, apierror.Validation("transfer item %s does not belong to the transfer", itemID)
		}
		if qty > line.Quantity {
			return nil, apierror.QuantityExceeded(
				"received quantity %d exceeds shipped quantity %d", qty, line.Quantity)
		}
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for i := range transfer.Items {
			item := &transfer.Items[i]
			qty := item.Quantity
			if counted, ok := counts[item.ID]; ok {
				qty = counted
			}
			if err := s.repo.SetItemReceivedTx(tx, item.ID, qty); err != nil {
				return err
			}
			if qty == 0 {
				continue
			}
			note := fmt.Sprintf("transfer %s received", transfer.TransferNumber)
			if _, err := s.inventory.ApplyChangeTx(tx, StockChange{
				StoreID:       transfer.ToStoreID,
				ProductID:     item.ProductID,
				Delta:         qty,
				Type:          model.MovementTransferIn,
				ReferenceType: model.RefTransfer,
				ReferenceID:   transfer.ID,
				Note:          &note,
				CreatedBy:     &receivedBy,
			}); err != nil {
				return err
			}
		}
		return s.repo.UpdateTx(tx, id, map[string]interface{}{
			"status":      model.TransferReceived,
			"received_at": now,
		})
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	transfer.Status = model.TransferReceived
	transfer.ReceivedAt = &now
	for i := range transfer.Items {
		qty := transfer.Items[i].Quantity
		if counted, ok := counts[transfer.Items[i].ID]; ok {
			qty = counted
		}
		transfer.Items[i].ReceivedQuantity = &qty
	}
	return transferToResponse(transfer), nil
}

func (s *transferService) Get(ctx context.Context, id uuid.UUID) (*dto.TransferResponse, error) {
	transfer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("transfer not found")
	}
	return transferToResponse(transfer), nil
}

func (s *transferService) List(ctx context.Context, filter dto.TransferFilter) (*dto.TransferListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	transfers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	items := make([]dto.TransferResponse, 0, len(transfers))
	for i := range transfers {
		items = append(items, *transferToResponse(&transfers[i]))
	}
	return &dto.TransferListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func transferToResponse(t *model.StockTransfer) *dto.TransferResponse {
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, dto.TransferItemResponse{
			ID:               it.ID.String(),
			ProductID:        it.ProductID.String(),
			Product:          name,
			Quantity:         it.Quantity,
			ReceivedQuantity: it.ReceivedQuantity,
		})
	}
	return &dto.TransferResponse{
		ID:             t.ID.String(),
		TransferNumber: t.TransferNumber,
		FromStoreID:    t.FromStoreID.String(),
		ToStoreID:      t.ToStoreID.String(),
		Status:         t.Status,
		Note:           t.Note,
		Items:          items,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
	}
}
