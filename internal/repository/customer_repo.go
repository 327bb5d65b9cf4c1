package repository

import (
	"context"
	"time"

	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerRepository is a collaborator lookup: the core reads customers (with
// their attached tier) and bumps their running statistics at settlement.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)

	// ApplyStatsTx atomically accumulates total_spent / total_transactions.
	ApplyStatsTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal, at time.Time) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Preload("CustomerDiscount").First(&c, id).Error
	return &c, err
}

func (r *customerRepo) ApplyStatsTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal, at time.Time) error {
	return tx.Model(&model.Customer{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_spent":         gorm.Expr("total_spent + ?", total),
		"total_transactions":  gorm.Expr("total_transactions + 1"),
		"last_transaction_at": at,
	}).Error
}
