package repository

import (
	"context"

	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiscountRepository manages promo codes. Usage counters only move through
// the atomic Tx methods — read-modify-write in application code would lose
// updates under concurrent checkout.
type DiscountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Discount, error)
	FindByCode(ctx context.Context, code string) (*model.Discount, error)

	// AddUsageTx atomically shifts usage_count by delta, floored at zero.
	AddUsageTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// SetActivationTx flips is_active together with the auto_deactivated
	// marker that distinguishes limit-driven deactivation from manual.
	SetActivationTx(tx *gorm.DB, id uuid.UUID, active, autoDeactivated bool) error
}

type discountRepo struct{ db *gorm.DB }

func NewDiscountRepository(db *gorm.DB) DiscountRepository { return &discountRepo{db: db} }

func (r *discountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Discount, error) {
	var d model.Discount
	err := r.db.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *discountRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Discount, error) {
	var d model.Discount
	err := tx.First(&d, id).Error
	return &d, err
}

func (r *discountRepo) FindByCode(ctx context.Context, code string) (*model.Discount, error) {
	var d model.Discount
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&d).Error
	return &d, err
}

func (r *discountRepo) AddUsageTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Discount{}).Where("id = ?", id).
		Update("usage_count", gorm.Expr("GREATEST(usage_count + ?, 0)", delta)).Error
}

func (r *discountRepo) SetActivationTx(tx *gorm.DB, id uuid.UUID, active, autoDeactivated bool) error {
	return tx.Model(&model.Discount{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":        active,
		"auto_deactivated": autoDeactivated,
	}).Error
}
