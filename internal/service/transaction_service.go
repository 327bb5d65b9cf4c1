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
	"github.com/dimaswi/pos-sub002/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionService interface {
	// Settle turns a cart, payments, an optional customer and an optional
	// promo code into one durable transaction: header, items, payments,
	// inventory decrements and discount usage all commit together.
	Settle(ctx context.Context, cashierID uuid.UUID, req dto.SettleRequest) (*dto.TransactionResponse, error)

	// Void fully reverses a completed transaction.
	Void(ctx context.Context, voidedBy uuid.UUID, id uuid.UUID, reason string) (*dto.TransactionResponse, error)

	Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error)
	List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
}

type transactionService struct {
	repo         repository.TransactionRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	discountRepo repository.DiscountRepository
	methodRepo   repository.PaymentMethodRepository
	returnRepo   repository.SalesReturnRepository
	inventory    InventoryService
	pricing      PricingService
	dispatcher   *worker.Dispatcher
	numberPrefix string
}

func NewTransactionService(
	repo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	discountRepo repository.DiscountRepository,
	methodRepo repository.PaymentMethodRepository,
	returnRepo repository.SalesReturnRepository,
	inventory InventoryService,
	pricing PricingService,
	dispatcher *worker.Dispatcher,
	numberPrefix string,
) TransactionService {
	return &transactionService{
		repo:         repo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		discountRepo: discountRepo,
		methodRepo:   methodRepo,
		returnRepo:   returnRepo,
		inventory:    inventory,
		pricing:      pricing,
		dispatcher:   dispatcher,
		numberPrefix: numberPrefix,
	}
}

// resolvedPayment pairs a payment line with its method's fee.
type resolvedPayment struct {
	methodID  uuid.UUID
	amount    decimal.Decimal
	fee       decimal.Decimal
	reference *string
}

// ── Settle ───────────────────────────────────────────────────────────────────
// One atomic unit of work:
//   1. Allocate the day-scoped transaction number (row-locked)
//   2. Price the cart (promo + tier, both on the original subtotal)
//   3. Insert header (completed/paid), items, payments
//   4. Decrement inventory per item, appending a sale movement — the
//      decrement is unconditional; oversell goes negative rather than failing
//   5. Bump discount usage and customer statistics
// A duplicate-key collision on the number retries the WHOLE unit of work,
// up to numberRetryAttempts.

func (s *transactionService) Settle(ctx context.Context, cashierID uuid.UUID, req dto.SettleRequest) (*dto.TransactionResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apierror.Validation("invalid store_id")
	}

	// Resolve collaborators outside the transaction — immutable snapshots.
	var customer *model.Customer
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, apierror.Validation("invalid customer_id")
		}
		customer, err = s.customerRepo.FindByID(ctx, cid)
		if err != nil {
			return nil, apierror.Validation("customer %s not found", *req.CustomerID)
		}
		customerID = &cid
	}

	var discount *model.Discount
	var discountID *uuid.UUID
	if req.DiscountID != nil {
		did, err := uuid.Parse(*req.DiscountID)
		if err != nil {
			return nil, apierror.Validation("invalid discount_id")
		}
		discount, err = s.discountRepo.FindByID(ctx, did)
		if err != nil {
			return nil, apierror.Validation("discount %s not found", *req.DiscountID)
		}
		discountID = &did
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	payments, paid, err := s.resolvePayments(ctx, req.Payments)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	quote := s.pricing.Quote(items, discount, customer, now)

	// Underpayment is accepted: change is clamped at zero, a short payment
	// simply records paid < total.
	change := paid.Sub(quote.Total)
	if change.IsNegative() {
		change = decimal.Zero
	}

	promoApplied := discountID != nil && quote.PromoDiscount.IsPositive()

	type lowStock struct {
		inv *model.Inventory
	}
	var alerts []lowStock

	var txn model.SalesTransaction
	txErr := withNumberRetry(func() error {
		alerts = alerts[:0]
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			number, err := s.repo.NextNumber(ctx, tx, s.numberPrefix, now)
			if err != nil {
				return err
			}

			txn = model.SalesTransaction{
				TransactionNumber:          number,
				StoreID:                    storeID,
				CustomerID:                 customerID,
				CashierID:                  cashierID,
				TransactionDate:            now,
				Subtotal:                   quote.Subtotal,
				DiscountAmount:             quote.PromoDiscount,
				CustomerDiscountAmount:     quote.CustomerDiscount,
				CustomerDiscountPercentage: quote.CustomerDiscountPercentage,
				TaxAmount:                  quote.TaxAmount,
				TotalAmount:                quote.Total,
				PaidAmount:                 paid,
				ChangeAmount:               change,
				Status:                     model.StatusCompleted,
				PaymentStatus:              "paid",
			}
			if promoApplied {
				txn.DiscountID = discountID
			}

			for _, it := range items {
				txn.Items = append(txn.Items, model.SalesItem{
					ProductID:      it.ProductID,
					Quantity:       it.Quantity,
					UnitPrice:      it.UnitPrice,
					DiscountAmount: it.Discount,
					TotalAmount:    it.Total,
				})
			}
			for _, p := range payments {
				txn.Payments = append(txn.Payments, model.SalesPayment{
					PaymentMethodID: p.methodID,
					Amount:          p.amount,
					FeeAmount:       p.fee,
					ReferenceNumber: p.reference,
					Status:          model.PaymentCompleted,
				})
			}

			if err := s.repo.Create(ctx, tx, &txn); err != nil {
				return err
			}

			// Unconditional stock decrement per item + sale movement.
			for _, it := range items {
				note := fmt.Sprintf("sale %s", number)
				inv, err := s.inventory.ApplyChangeTx(tx, StockChange{
					StoreID:       storeID,
					ProductID:     it.ProductID,
					Delta:         -it.Quantity,
					Type:          model.MovementSale,
					ReferenceType: model.RefTransaction,
					ReferenceID:   txn.ID,
					Note:          &note,
					CreatedBy:     &cashierID,
				})
				if err != nil {
					return fmt.Errorf("adjusting stock of %s: %w", it.Name, err)
				}
				if inv.Quantity <= inv.MinimumStock {
					alerts = append(alerts, lowStock{inv: inv})
				}
			}

			if promoApplied {
				if err := consumeDiscountTx(tx, s.discountRepo, *discountID); err != nil {
					return err
				}
			}

			if customerID != nil {
				if err := s.customerRepo.ApplyStatsTx(tx, *customerID, quote.Total, now); err != nil {
					return err
				}
			}

			return nil
		})
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, apierror.SequenceExhausted(txErr)
		}
		var apiErr *apierror.Error
		if errors.As(txErr, &apiErr) {
			return nil, txErr
		}
		return nil, apierror.Internal(txErr)
	}

	// Best-effort low-stock notifications — fire & forget after commit.
	if s.dispatcher != nil {
		for _, a := range alerts {
			_ = s.dispatcher.EnqueueStockAlert(ctx, map[string]interface{}{
				"store_id":      a.inv.StoreID.String(),
				"product_id":    a.inv.ProductID.String(),
				"quantity":      a.inv.Quantity,
				"minimum_stock": a.inv.MinimumStock,
			})
		}
	}

	resp := transactionToResponse(&txn)
	for i, it := range items {
		resp.Items[i].Product = it.Name
	}
	return resp, nil
}

func (s *transactionService) resolveItems(ctx context.Context, reqs []dto.SettleItemRequest) ([]PricedItem, error) {
	items := make([]PricedItem, 0, len(reqs))
	for _, item := range reqs {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product_id %s", item.ProductID)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, apierror.Validation("product %s not found", item.ProductID)
		}
		if !p.Active {
			return nil, apierror.Validation("product %s is inactive and cannot be sold", p.Name)
		}
		lineTotal := p.SellPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Sub(item.Discount)
		items = append(items, PricedItem{
			ProductID: pid,
			Name:      p.Name,
			Quantity:  item.Quantity,
			UnitPrice: p.SellPrice,
			Discount:  item.Discount,
			Total:     lineTotal,
		})
	}
	return items, nil
}

func (s *transactionService) resolvePayments(ctx context.Context, reqs []dto.SettlePaymentRequest) ([]resolvedPayment, decimal.Decimal, error) {
	payments := make([]resolvedPayment, 0, len(reqs))
	paid := decimal.Zero
	for _, pay := range reqs {
		mid, err := uuid.Parse(pay.PaymentMethodID)
		if err != nil {
			return nil, decimal.Zero, apierror.Validation("invalid payment_method_id %s", pay.PaymentMethodID)
		}
		m, err := s.methodRepo.FindByID(ctx, mid)
		if err != nil {
			return nil, decimal.Zero, apierror.Validation("payment method %s not found", pay.PaymentMethodID)
		}
		if !m.Active {
			return nil, decimal.Zero, apierror.Validation("payment method %s is inactive", m.Name)
		}
		payments = append(payments, resolvedPayment{
			methodID:  mid,
			amount:    pay.Amount,
			fee:       m.Fee(pay.Amount),
			reference: pay.ReferenceNumber,
		})
		paid = paid.Add(pay.Amount)
	}
	return payments, paid, nil
}

// ── Void ─────────────────────────────────────────────────────────────────────
// Full reversal: restore every item's stock, void completed payments, hand
// back the promo usage, stamp the void metadata. Terminal.

func (s *transactionService) Void(ctx context.Context, voidedBy uuid.UUID, id uuid.UUID, reason string) (*dto.TransactionResponse, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("transaction not found")
	}
	if txn.Status != model.StatusCompleted {
		return nil, apierror.InvalidState("only completed transactions can be voided (current status: %s)", txn.Status)
	}
	hasApproved, err := s.returnRepo.HasApproved(ctx, id)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	if hasApproved {
		return nil, apierror.InvalidState("transaction has an approved return and cannot be voided")
	}

	now := time.Now()
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, item := range txn.Items {
			note := fmt.Sprintf("void of %s: %s", txn.TransactionNumber, reason)
			if _, err := s.inventory.ApplyChangeTx(tx, StockChange{
				StoreID:       txn.StoreID,
				ProductID:     item.ProductID,
				Delta:         item.Quantity,
				Type:          model.MovementAdjustment,
				ReferenceType: model.RefTransaction,
				ReferenceID:   txn.ID,
				Note:          &note,
				CreatedBy:     &voidedBy,
			}); err != nil {
				return err
			}
		}

		for _, pay := range txn.Payments {
			if pay.Status != model.PaymentCompleted {
				continue
			}
			if err := s.repo.UpdatePaymentStatusTx(tx, pay.ID, model.PaymentVoided); err != nil {
				return err
			}
		}

		if txn.DiscountID != nil && txn.DiscountAmount.IsPositive() {
			if err := releaseDiscountTx(tx, s.discountRepo, *txn.DiscountID); err != nil {
				return err
			}
		}

		return s.repo.UpdateTx(tx, id, map[string]interface{}{
			"status":      model.DeriveStatus(txn.TotalQuantity(), 0, true),
			"voided_at":   now,
			"voided_by":   voidedBy,
			"void_reason": reason,
		})
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	txn.Status = model.StatusVoided
	txn.VoidedAt = &now
	txn.VoidedBy = &voidedBy
	txn.VoidReason = &reason
	for i := range txn.Payments {
		if txn.Payments[i].Status == model.PaymentCompleted {
			txn.Payments[i].Status = model.PaymentVoided
		}
	}
	return transactionToResponse(txn), nil
}

func (s *transactionService) Get(ctx context.Context, id uuid.UUID) (*dto.TransactionResponse, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.Validation("transaction not found")
	}
	return transactionToResponse(txn), nil
}

func (s *transactionService) List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = model.StatusCompleted
	}
	txs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, *transactionToResponse(&txs[i]))
	}
	return &dto.TransactionListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func transactionToResponse(t *model.SalesTransaction) *dto.TransactionResponse {
	items := make([]dto.SalesItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, dto.SalesItemResponse{
			ID:             it.ID.String(),
			ProductID:      it.ProductID.String(),
			Product:        name,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			DiscountAmount: it.DiscountAmount,
			TotalAmount:    it.TotalAmount,
		})
	}
	payments := make([]dto.SalesPaymentResponse, 0, len(t.Payments))
	for _, p := range t.Payments {
		payments = append(payments, dto.SalesPaymentResponse{
			ID:              p.ID.String(),
			PaymentMethodID: p.PaymentMethodID.String(),
			Amount:          p.Amount,
			FeeAmount:       p.FeeAmount,
			ReferenceNumber: p.ReferenceNumber,
			Status:          p.Status,
		})
	}

	var customerID, discountID *string
	if t.CustomerID != nil {
		s := t.CustomerID.String()
		customerID = &s
	}
	if t.DiscountID != nil {
		s := t.DiscountID.String()
		discountID = &s
	}

	return &dto.TransactionResponse{
		ID:                         t.ID.String(),
		TransactionNumber:          t.TransactionNumber,
		StoreID:                    t.StoreID.String(),
		CustomerID:                 customerID,
		CashierID:                  t.CashierID.String(),
		Subtotal:                   t.Subtotal,
		DiscountAmount:             t.DiscountAmount,
		CustomerDiscountAmount:     t.CustomerDiscountAmount,
		CustomerDiscountPercentage: t.CustomerDiscountPercentage,
		TaxAmount:                  t.TaxAmount,
		TotalAmount:                t.TotalAmount,
		PaidAmount:                 t.PaidAmount,
		ChangeAmount:               t.ChangeAmount,
		Status:                     t.Status,
		PaymentStatus:              t.PaymentStatus,
		DiscountID:                 discountID,
		VoidReason:                 t.VoidReason,
		Items:                      items,
		Payments:                   payments,
		CreatedAt:                  t.TransactionDate.Format(time.RFC3339),
	}
}
