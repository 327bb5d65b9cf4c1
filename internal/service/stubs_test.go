package service

import (
	"context"
	"time"

	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"
	"github.com/dimaswi/pos-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. All Tx methods accept the nil *gorm.DB that
// runTx passes in unit-test mode.

// ── inventory ─────────────────────────────────────────────────────────────────

type invKey struct{ store, product uuid.UUID }

type stubInventoryRepo struct {
	balances  map[invKey]*model.Inventory
	movements []model.StockMovement
}

func newStubInventoryRepo() *stubInventoryRepo {
	return &stubInventoryRepo{balances: make(map[invKey]*model.Inventory)}
}

func (r *stubInventoryRepo) seed(storeID, productID uuid.UUID, qty, minimum int) {
	r.balances[invKey{storeID, productID}] = &model.Inventory{
		ID:           uuid.New(),
		StoreID:      storeID,
		ProductID:    productID,
		Quantity:     qty,
		MinimumStock: minimum,
	}
}

func (r *stubInventoryRepo) quantity(storeID, productID uuid.UUID) int {
	if inv, ok := r.balances[invKey{storeID, productID}]; ok {
		return inv.Quantity
	}
	return 0
}

func (r *stubInventoryRepo) Find(_ context.Context, storeID, productID uuid.UUID) (*model.Inventory, error) {
	inv, ok := r.balances[invKey{storeID, productID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInventoryRepo) FindTx(_ *gorm.DB, storeID, productID uuid.UUID) (*model.Inventory, error) {
	return r.Find(context.Background(), storeID, productID)
}

func (r *stubInventoryRepo) GetOrCreateTx(_ *gorm.DB, storeID, productID uuid.UUID) (*model.Inventory, error) {
	key := invKey{storeID, productID}
	if inv, ok := r.balances[key]; ok {
		return inv, nil
	}
	inv := &model.Inventory{ID: uuid.New(), StoreID: storeID, ProductID: productID}
	r.balances[key] = inv
	return inv, nil
}

func (r *stubInventoryRepo) AdjustQuantityTx(_ *gorm.DB, storeID, productID uuid.UUID, delta int) error {
	inv, ok := r.balances[invKey{storeID, productID}]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.Quantity += delta
	return nil
}

func (r *stubInventoryRepo) CreateMovementTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubInventoryRepo) ListMovements(_ context.Context, _ dto.MovementFilter) ([]model.StockMovement, int64, error) {
	return r.movements, int64(len(r.movements)), nil
}

func (r *stubInventoryRepo) BelowMinimum(_ context.Context, storeID *uuid.UUID) ([]model.Inventory, error) {
	var out []model.Inventory
	for _, inv := range r.balances {
		if storeID != nil && inv.StoreID != *storeID {
			continue
		}
		if inv.Quantity <= inv.MinimumStock {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) DB() *gorm.DB { return nil }

var _ repository.InventoryRepository = (*stubInventoryRepo)(nil)

// ── transactions ──────────────────────────────────────────────────────────────

type stubTransactionRepo struct {
	byID map[uuid.UUID]*model.SalesTransaction
	seq  int
	// dupesRemaining forces Create to fail with a duplicate-key error this
	// many times, simulating concurrent number collisions.
	dupesRemaining int
}

func newStubTransactionRepo() *stubTransactionRepo {
	return &stubTransactionRepo{byID: make(map[uuid.UUID]*model.SalesTransaction)}
}

func (r *stubTransactionRepo) Create(_ context.Context, _ *gorm.DB, t *model.SalesTransaction) error {
	if r.dupesRemaining > 0 {
		r.dupesRemaining--
		return gorm.ErrDuplicatedKey
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	for i := range t.Items {
		if t.Items[i].ID == uuid.Nil {
			t.Items[i].ID = uuid.New()
		}
		t.Items[i].TransactionID = t.ID
	}
	for i := range t.Payments {
		if t.Payments[i].ID == uuid.Nil {
			t.Payments[i].ID = uuid.New()
		}
		t.Payments[i].TransactionID = t.ID
	}
	r.byID[t.ID] = t
	return nil
}

func (r *stubTransactionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SalesTransaction, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTransactionRepo) NextNumber(_ context.Context, _ *gorm.DB, prefix string, date time.Time) (string, error) {
	r.seq++
	return repository.FormatNumber(prefix, date, r.seq), nil
}

func (r *stubTransactionRepo) UpdateTx(_ *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	t, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			t.Status = v.(string)
		case "voided_at":
			at := v.(time.Time)
			t.VoidedAt = &at
		case "voided_by":
			by := v.(uuid.UUID)
			t.VoidedBy = &by
		case "void_reason":
			reason := v.(string)
			t.VoidReason = &reason
		}
	}
	return nil
}

func (r *stubTransactionRepo) UpdatePaymentStatusTx(_ *gorm.DB, paymentID uuid.UUID, status string) error {
	for _, t := range r.byID {
		for i := range t.Payments {
			if t.Payments[i].ID == paymentID {
				t.Payments[i].Status = status
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubTransactionRepo) List(_ context.Context, filter dto.TransactionFilter) ([]model.SalesTransaction, int64, error) {
	var out []model.SalesTransaction
	for _, t := range r.byID {
		if filter.Status != "" && filter.Status != "all" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransactionRepo) DB() *gorm.DB { return nil }

var _ repository.TransactionRepository = (*stubTransactionRepo)(nil)

// ── catalog collaborators ─────────────────────────────────────────────────────

type stubProductRepo struct {
	byID map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{byID: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		r.byID[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.byID {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.byID[p.ID] = p
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubCustomerRepo struct {
	byID map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo(customers ...*model.Customer) *stubCustomerRepo {
	r := &stubCustomerRepo{byID: make(map[uuid.UUID]*model.Customer)}
	for _, c := range customers {
		r.byID[c.ID] = c
	}
	return r
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) ApplyStatsTx(_ *gorm.DB, id uuid.UUID, total decimal.Decimal, at time.Time) error {
	c, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.TotalSpent = c.TotalSpent.Add(total)
	c.TotalTransactions++
	c.LastTransactionAt = &at
	return nil
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

type stubDiscountRepo struct {
	byID map[uuid.UUID]*model.Discount
}

func newStubDiscountRepo(discounts ...*model.Discount) *stubDiscountRepo {
	r := &stubDiscountRepo{byID: make(map[uuid.UUID]*model.Discount)}
	for _, d := range discounts {
		r.byID[d.ID] = d
	}
	return r
}

func (r *stubDiscountRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Discount, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDiscountRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Discount, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubDiscountRepo) FindByCode(_ context.Context, code string) (*model.Discount, error) {
	for _, d := range r.byID {
		if d.Code == code {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubDiscountRepo) AddUsageTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	d, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.UsageCount += delta
	if d.UsageCount < 0 {
		d.UsageCount = 0
	}
	return nil
}

func (r *stubDiscountRepo) SetActivationTx(_ *gorm.DB, id uuid.UUID, active, autoDeactivated bool) error {
	d, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.IsActive = active
	d.AutoDeactivated = autoDeactivated
	return nil
}

var _ repository.DiscountRepository = (*stubDiscountRepo)(nil)

type stubMethodRepo struct {
	byID map[uuid.UUID]*model.PaymentMethod
}

func newStubMethodRepo(methods ...*model.PaymentMethod) *stubMethodRepo {
	r := &stubMethodRepo{byID: make(map[uuid.UUID]*model.PaymentMethod)}
	for _, m := range methods {
		r.byID[m.ID] = m
	}
	return r
}

func (r *stubMethodRepo) FindByID(_ context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (r *stubMethodRepo) Create(_ context.Context, m *model.PaymentMethod) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.byID[m.ID] = m
	return nil
}

var _ repository.PaymentMethodRepository = (*stubMethodRepo)(nil)

// ── returns ───────────────────────────────────────────────────────────────────

type stubReturnRepo struct {
	byID   map[uuid.UUID]*model.SalesReturn
	txRepo *stubTransactionRepo
	seq    int
}

func newStubReturnRepo(txRepo *stubTransactionRepo) *stubReturnRepo {
	return &stubReturnRepo{byID: make(map[uuid.UUID]*model.SalesReturn), txRepo: txRepo}
}

func (r *stubReturnRepo) Create(_ context.Context, _ *gorm.DB, ret *model.SalesReturn) error {
	if ret.ID == uuid.Nil {
		ret.ID = uuid.New()
	}
	for i := range ret.Items {
		if ret.Items[i].ID == uuid.Nil {
			ret.Items[i].ID = uuid.New()
		}
		ret.Items[i].ReturnID = ret.ID
	}
	r.byID[ret.ID] = ret
	return nil
}

func (r *stubReturnRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SalesReturn, error) {
	ret, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if ret.Transaction == nil && r.txRepo != nil {
		ret.Transaction = r.txRepo.byID[ret.TransactionID]
	}
	return ret, nil
}

func (r *stubReturnRepo) NextNumber(_ context.Context, _ *gorm.DB, prefix string, date time.Time) (string, error) {
	r.seq++
	return repository.FormatNumber(prefix, date, r.seq), nil
}

func (r *stubReturnRepo) HasPending(_ context.Context, transactionID uuid.UUID) (bool, error) {
	for _, ret := range r.byID {
		if ret.TransactionID == transactionID && ret.Status == model.ReturnPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubReturnRepo) HasApproved(_ context.Context, transactionID uuid.UUID) (bool, error) {
	for _, ret := range r.byID {
		if ret.TransactionID == transactionID && ret.Status == model.ReturnApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubReturnRepo) ReturnedQuantities(_ context.Context, transactionID, exclude uuid.UUID) (map[uuid.UUID]int, error) {
	out := make(map[uuid.UUID]int)
	for _, ret := range r.byID {
		if ret.TransactionID != transactionID || ret.Status == model.ReturnRejected {
			continue
		}
		if exclude != uuid.Nil && ret.ID == exclude {
			continue
		}
		for _, it := range ret.Items {
			out[it.SalesItemID] += it.Quantity
		}
	}
	return out, nil
}

func (r *stubReturnRepo) ApprovedQuantity(_ context.Context, transactionID uuid.UUID) (int, error) {
	total := 0
	for _, ret := range r.byID {
		if ret.TransactionID != transactionID || ret.Status != model.ReturnApproved {
			continue
		}
		for _, it := range ret.Items {
			total += it.Quantity
		}
	}
	return total, nil
}

func (r *stubReturnRepo) UpdateTx(_ *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	ret, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			ret.Status = v.(string)
		case "approved_by":
			by := v.(uuid.UUID)
			ret.ApprovedBy = &by
		case "approved_at":
			at := v.(time.Time)
			ret.ApprovedAt = &at
		case "reason":
			ret.Reason = v.(*string)
		case "refund_amount":
			ret.RefundAmount = v.(decimal.Decimal)
		}
	}
	return nil
}

func (r *stubReturnRepo) ReplaceItemsTx(_ *gorm.DB, returnID uuid.UUID, items []model.ReturnItem) error {
	ret, ok := r.byID[returnID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].ReturnID = returnID
	}
	ret.Items = items
	return nil
}

func (r *stubReturnRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *stubReturnRepo) List(_ context.Context, filter dto.ReturnFilter) ([]model.SalesReturn, int64, error) {
	var out []model.SalesReturn
	for _, ret := range r.byID {
		if filter.Status != "" && filter.Status != "all" && ret.Status != filter.Status {
			continue
		}
		out = append(out, *ret)
	}
	return out, int64(len(out)), nil
}

func (r *stubReturnRepo) DB() *gorm.DB { return nil }

var _ repository.SalesReturnRepository = (*stubReturnRepo)(nil)

// ── transfers ─────────────────────────────────────────────────────────────────

type stubTransferRepo struct {
	byID map[uuid.UUID]*model.StockTransfer
	seq  int
}

func newStubTransferRepo() *stubTransferRepo {
	return &stubTransferRepo{byID: make(map[uuid.UUID]*model.StockTransfer)}
}

func (r *stubTransferRepo) Create(_ context.Context, _ *gorm.DB, t *model.StockTransfer) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	for i := range t.Items {
		if t.Items[i].ID == uuid.Nil {
			t.Items[i].ID = uuid.New()
		}
		t.Items[i].TransferID = t.ID
	}
	r.byID[t.ID] = t
	return nil
}

func (r *stubTransferRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockTransfer, error) {
	t, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *stubTransferRepo) NextNumber(_ context.Context, _ *gorm.DB, prefix string, date time.Time) (string, error) {
	r.seq++
	return repository.FormatNumber(prefix, date, r.seq), nil
}

func (r *stubTransferRepo) UpdateTx(_ *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	t, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			t.Status = v.(string)
		case "approved_by":
			by := v.(uuid.UUID)
			t.ApprovedBy = &by
		case "approved_at":
			at := v.(time.Time)
			t.ApprovedAt = &at
		case "shipped_at":
			at := v.(time.Time)
			t.ShippedAt = &at
		case "received_at":
			at := v.(time.Time)
			t.ReceivedAt = &at
		case "note":
			t.Note = v.(*string)
		}
	}
	return nil
}

func (r *stubTransferRepo) ReplaceItemsTx(_ *gorm.DB, transferID uuid.UUID, items []model.TransferItem) error {
	t, ok := r.byID[transferID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].TransferID = transferID
	}
	t.Items = items
	return nil
}

func (r *stubTransferRepo) SetItemReceivedTx(_ *gorm.DB, itemID uuid.UUID, qty int) error {
	for _, t := range r.byID {
		for i := range t.Items {
			if t.Items[i].ID == itemID {
				t.Items[i].ReceivedQuantity = &qty
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubTransferRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func (r *stubTransferRepo) List(_ context.Context, filter dto.TransferFilter) ([]model.StockTransfer, int64, error) {
	var out []model.StockTransfer
	for _, t := range r.byID {
		if filter.Status != "" && filter.Status != "all" && t.Status != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	return out, int64(len(out)), nil
}

func (r *stubTransferRepo) DB() *gorm.DB { return nil }

var _ repository.TransferRepository = (*stubTransferRepo)(nil)
