package repository

import (
	"context"
	"errors"
	"time"

	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository defines the data access contract for sales
// transactions. Services depend on this interface, not on the concrete GORM
// implementation, enabling clean unit testing via stubs.
type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.SalesTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesTransaction, error)

	// NextNumber serializes same-day numbering with a row lock on the latest
	// transaction of the day, then derives last+1. Must run inside tx.
	NextNumber(ctx context.Context, tx *gorm.DB, prefix string, date time.Time) (string, error)

	// UpdateTx applies column updates to the header inside a transaction.
	UpdateTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error

	// UpdatePaymentStatusTx flips one payment line's status.
	UpdatePaymentStatusTx(tx *gorm.DB, paymentID uuid.UUID, status string) error

	List(ctx context.Context, filter dto.TransactionFilter) ([]model.SalesTransaction, int64, error)

	// DB exposes the DB for transaction creation in the service layer.
	DB() *gorm.DB
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository { return &transactionRepo{db: db} }

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) Create(ctx context.Context, tx *gorm.DB, t *model.SalesTransaction) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesTransaction, error) {
	var t model.SalesTransaction
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Payments").
		First(&t, id).Error
	return &t, err
}

func (r *transactionRepo) NextNumber(ctx context.Context, tx *gorm.DB, prefix string, date time.Time) (string, error) {
	var last model.SalesTransaction
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_number LIKE ?", dayPattern(prefix, date)).
		// Counters past 9999 widen to five digits, so order by length
		// before the string value or "-10000" sorts below "-9999".
		Order("length(transaction_number) DESC, transaction_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FormatNumber(prefix, date, 1), nil
	}
	if err != nil {
		return "", err
	}
	n, err := SequenceOf(last.TransactionNumber)
	if err != nil {
		return "", err
	}
	return FormatNumber(prefix, date, n+1), nil
}

func (r *transactionRepo) UpdateTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.SalesTransaction{}).Where("id = ?", id).Updates(fields).Error
}

func (r *transactionRepo) UpdatePaymentStatusTx(tx *gorm.DB, paymentID uuid.UUID, status string) error {
	return tx.Model(&model.SalesPayment{}).Where("id = ?", paymentID).Update("status", status).Error
}

func (r *transactionRepo) List(ctx context.Context, filter dto.TransactionFilter) ([]model.SalesTransaction, int64, error) {
	var txs []model.SalesTransaction
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.SalesTransaction{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Date != "" {
		q = q.Where("DATE(transaction_date) = ?", filter.Date)
	} else {
		// Default: today
		q = q.Where("DATE(transaction_date) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Product").Preload("Payments").
		Order("transaction_date DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&txs).Error

	return txs, total, err
}
