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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReturnService interface {
	// Create opens a pending return against a settled transaction. Quantities
	// are validated against what is still returnable per line item.
	Create(ctx context.Context, requestedBy uuid.UUID, req dto.CreateReturnRequest) (*dto.ReturnResponse, error)

	// Update replaces the item lines of a pending return.
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateReturnRequest) (*dto.ReturnResponse, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// Approve restocks good-condition items, re-derives the transaction
	// status and, when the transaction flips to refunded, hands the promo
	// usage back.
	Approve(ctx context.Context, approvedBy uuid.UUID, id uuid.UUID) (*dto.ReturnResponse, error)

	Reject(ctx context.Context, rejectedBy uuid.UUID, id uuid.UUID) (*dto.ReturnResponse, error)

	Get(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error)
	List(ctx context.Context, filter dto.ReturnFilter) (*dto.ReturnListResponse, error)
}

type returnService struct {
	repo         repository.SalesReturnRepository
	txRepo       repository.TransactionRepository
	discountRepo repository.DiscountRepository
	inventory    InventoryService
	numberPrefix string
}

func NewReturnService(
	repo repository.SalesReturnRepository,
	txRepo repository.TransactionRepository,
	discountRepo repository.DiscountRepository,
	inventory InventoryService,
	numberPrefix string,
) ReturnService {
	return &returnService{
		repo:         repo,
		txRepo:       txRepo,
		discountRepo: discountRepo,
		inventory:    inventory,
		numberPrefix: numberPrefix,
	}
}

func (s *returnService) Create(ctx context.Context, requestedBy uuid.UUID, req dto.CreateReturnRequest) (*dto.ReturnResponse, error) {
	txnID, err := uuid.Parse(req.TransactionID)
	if err != nil {
		return nil, apierror.Validation("invalid transaction_id")
	}
	txn, err := s.txRepo.FindByID(ctx, txnID)
	if err != nil {
		return nil, apierror.Validation("transaction not found")
	}

	// Returns run against settled transactions only. A partially refunded
	// transaction can still take further returns; a voided one cannot.
	if txn.Status != model.StatusCompleted && txn.Status != model.StatusRefunded {
		return nil, apierror.InvalidState("transaction with status %s cannot be returned", txn.Status)
	}

	now := time.Now()
	if now.Sub(txn.TransactionDate) > model.ReturnWindow {
		return nil, apierror.InvalidState("return window of %d days has expired", int(model.ReturnWindow.Hours()/24))
	}

	pending, err := s.repo.HasPending(ctx, txnID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	if pending {
		return nil, apierror.InvalidState("a pending return already exists for this transaction")
	}

	items, refund, err := s.buildItems(ctx, txn, uuid.Nil, req.Items)
	if err != nil {
		return nil, err
	}

	var ret model.SalesReturn
	txErr := withNumberRetry(func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			number, err := s.repo.NextNumber(ctx, tx, s.numberPrefix, now)
			if err != nil {
				return err
			}
			ret = model.SalesReturn{
				ReturnNumber:  number,
				TransactionID: txnID,
				Status:        model.ReturnPending,
				Reason:        req.Reason,
				RefundAmount:  refund,
				RequestedBy:   requestedBy,
				Items:         items,
			}
			return s.repo.Create(ctx, tx, &ret)
		})
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apierror.SequenceExhausted(txErr)
		}
		return nil, apierror.Internal(txErr)
	}

	return returnToResponse(&ret), nil
}

// buildItems validates the requested lines against the transaction and the
// quantities already claimed by other non-rejected returns, computing the
// per-line and total refund. exclude skips one return in the availability
// math (the pending return being edited).
func (s *returnService) buildItems(ctx context.Context, txn *model.SalesTransaction, exclude uuid.UUID, reqs []dto.ReturnItemRequest) ([]model.ReturnItem, decimal.Decimal, error) {
	byID := make(map[uuid.UUID]*model.SalesItem, len(txn.Items))
	for i := range txn.Items {
		byID[txn.Items[i].ID] = &txn.Items[i]
	}

	claimed, err := s.repo.ReturnedQuantities(ctx, txn.ID, exclude)
	if err != nil {
		return nil, decimal.Zero, apierror.Internal(err)
	}

	items := make([]model.ReturnItem, 0, len(reqs))
	refund := decimal.Zero
	seen := make(map[uuid.UUID]bool, len(reqs))
	for _, rq := range reqs {
		itemID, err := uuid.Parse(rq.SalesItemID)
		if err != nil {
			return nil, decimal.Zero, apierror.Validation("invalid sales_item_id %s", rq.SalesItemID)
		}
		line, ok := byID[itemID]
		if !ok {
			return nil, decimal.Zero, apierror.Validation("sales item %s does not belong to the transaction", rq.SalesItemID)
		}
		if seen[itemID] {
			return nil, decimal.Zero, apierror.Validation("sales item %s listed more than once", rq.SalesItemID)
		}
		seen[itemID] = true

		available := line.Quantity - claimed[itemID]
		if rq.Quantity > available {
			product := line.ProductID.String()
			if line.Product != nil {
				product = line.Product.Name
			}
			return nil, decimal.Zero, apierror.QuantityExceeded(
				"return quantity %d for product %s exceeds remaining quantity (available: %d)",
				rq.Quantity, product, available)
		}

		perUnit := line.UnitPrice.Sub(line.DiscountAmount)
		if perUnit.IsNegative() {
			perUnit = decimal.Zero
		}
		lineRefund := perUnit.Mul(decimal.NewFromInt(int64(rq.Quantity)))
		refund = refund.Add(lineRefund)

		items = append(items, model.ReturnItem{
			SalesItemID:  itemID,
			ProductID:    line.ProductID,
			Quantity:     rq.Quantity,
			Condition:    rq.Condition,
			Reason:       rq.Reason,
			RefundAmount: lineRefund,
		})
	}
	return items, refund, nil
}

func (s *returnService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateReturnRequest) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("return not found")
	}
	if ret.Status != model.ReturnPending {
		return nil, apierror.InvalidState("only pending returns can be edited (current status: %s)", ret.Status)
	}
	if ret.Transaction == nil {
		return nil, apierror.Internal(fmt.Errorf("return %s has no transaction loaded", id))
	}

	items, refund, err := s.buildItems(ctx, ret.Transaction, ret.ID, req.Items)
	if err != nil {
		return nil, err
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.ReplaceItemsTx(tx, ret.ID, items); err != nil {
			return err
		}
		return s.repo.UpdateTx(tx, ret.ID, map[string]interface{}{
			"reason":        req.Reason,
			"refund_amount": refund,
		})
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	ret.Reason = req.Reason
	ret.RefundAmount = refund
	ret.Items = items
	return returnToResponse(ret), nil
}

func (s *returnService) Delete(ctx context.Context, id uuid.UUID) error {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return apierror.Validation("return not found")
	}
	if ret.Status != model.ReturnPending {
		return apierror.InvalidState("only pending returns can be deleted (current status: %s)", ret.Status)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Internal(err)
	}
	return nil
}

func (s *returnService) Approve(ctx context.Context, approvedBy uuid.UUID, id uuid.UUID) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("return not found")
	}
	if ret.Status != model.ReturnPending {
		return nil, apierror.InvalidState("only pending returns can be approved (current status: %s)", ret.Status)
	}
	txn := ret.Transaction
	if txn == nil {
		return nil, apierror.Internal(fmt.Errorf("return %s has no transaction loaded", id))
	}

	previouslyApproved, err := s.repo.ApprovedQuantity(ctx, txn.ID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	newStatus := model.DeriveStatus(txn.TotalQuantity(), previouslyApproved+ret.TotalQuantity(), false)

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Only merchandise that came back in sellable condition is restocked;
		// damaged and defective units are written off.
		for _, item := range ret.Items {
			if item.Condition != model.ConditionGood {
				continue
			}
			note := fmt.Sprintf("return %s", ret.ReturnNumber)
			if _, err := s.inventory.ApplyChangeTx(tx, StockChange{
				StoreID:       txn.StoreID,
				ProductID:     item.ProductID,
				Delta:         item.Quantity,
				Type:          model.MovementReturn,
				ReferenceType: model.RefReturn,
				ReferenceID:   ret.ID,
				Note:          &note,
				CreatedBy:     &approvedBy,
			}); err != nil {
				return err
			}
		}

		if err := s.repo.UpdateTx(tx, ret.ID, map[string]interface{}{
			"status":      model.ReturnApproved,
			"approved_by": approvedBy,
			"approved_at": now,
		}); err != nil {
			return err
		}

		if newStatus != txn.Status {
			if err := s.txRepo.UpdateTx(tx, txn.ID, map[string]interface{}{"status": newStatus}); err != nil {
				return err
			}
			// Crossing into refunded: the customer gave most of the order
			// back, so the promo usage is handed back too.
			if newStatus == model.StatusRefunded && txn.DiscountID != nil && txn.DiscountAmount.IsPositive() {
				if err := releaseDiscountTx(tx, s.discountRepo, *txn.DiscountID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	ret.Status = model.ReturnApproved
	ret.ApprovedBy = &approvedBy
	ret.ApprovedAt = &now
	return returnToResponse(ret), nil
}

func (s *returnService) Reject(ctx context.Context, rejectedBy uuid.UUID, id uuid.UUID) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("return not found")
	}
	if ret.Status != model.ReturnPending {
		return nil, apierror.InvalidState("only pending returns can be rejected (current status: %s)", ret.Status)
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateTx(tx, ret.ID, map[string]interface{}{
			"status":      model.ReturnRejected,
			"approved_by": rejectedBy,
			"approved_at": now,
		})
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	ret.Status = model.ReturnRejected
	ret.ApprovedBy = &rejectedBy
	ret.ApprovedAt = &now
	return returnToResponse(ret), nil
}

func (s *returnService) Get(ctx context.Context, id uuid.UUID) (*dto.ReturnResponse, error) {
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("return not found")
	}
	return returnToResponse(ret), nil
}

func (s *returnService) List(ctx context.Context, filter dto.ReturnFilter) (*dto.ReturnListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	rets, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	items := make([]dto.ReturnResponse, 0, len(rets))
	for i := range rets {
		items = append(items, *returnToResponse(&rets[i]))
	}
	return &dto.ReturnListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func returnToResponse(r *model.SalesReturn) *dto.ReturnResponse {
	items := make([]dto.ReturnItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, dto.ReturnItemResponse{
			ID:           it.ID.String(),
			SalesItemID:  it.SalesItemID.String(),
			ProductID:    it.ProductID.String(),
			Product:      name,
			Quantity:     it.Quantity,
			Condition:    it.Condition,
			Reason:       it.Reason,
			RefundAmount: it.RefundAmount,
		})
	}
	return &dto.ReturnResponse{
		ID:            r.ID.String(),
		ReturnNumber:  r.ReturnNumber,
		TransactionID: r.TransactionID.String(),
		Status:        r.Status,
		Reason:        r.Reason,
		RefundAmount:  r.RefundAmount,
		Items:         items,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}
