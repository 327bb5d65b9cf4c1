package repository

import (
	"context"

	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentMethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error)
	Create(ctx context.Context, m *model.PaymentMethod) error
}

type paymentMethodRepo struct{ db *gorm.DB }

func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepo{db: db}
}

func (r *paymentMethodRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentMethod, error) {
	var m model.PaymentMethod
	err := r.db.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *paymentMethodRepo) Create(ctx context.Context, m *model.PaymentMethod) error {
	return r.db.WithContext(ctx).Create(m).Error
}
