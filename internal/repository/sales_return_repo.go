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

type SalesReturnRepository interface {
	Create(ctx context.Context, tx *gorm.DB, r *model.SalesReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SalesReturn, error)

	NextNumber(ctx context.Context, tx *gorm.DB, prefix string, date time.Time) (string, error)

	// HasPending reports whether a pending return exists for the transaction.
	HasPending(ctx context.Context, transactionID uuid.UUID) (bool, error)
	// HasApproved reports whether any approved return exists (blocks void).
	HasApproved(ctx context.Context, transactionID uuid.UUID) (bool, error)

	// ReturnedQuantities sums quantities per sales item across all
	// non-rejected returns of the transaction. exclude skips one return
	// (the one being edited); pass uuid.Nil to include everything.
	ReturnedQuantities(ctx context.Context, transactionID, exclude uuid.UUID) (map[uuid.UUID]int, error)

	// ApprovedQuantity is the total quantity across approved returns,
	// used for the refunded-status derivation.
	ApprovedQuantity(ctx context.Context, transactionID uuid.UUID) (int, error)

	UpdateTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ReplaceItemsTx(tx *gorm.DB, returnID uuid.UUID, items []model.ReturnItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.ReturnFilter) ([]model.SalesReturn, int64, error)

	DB() *gorm.DB
}

type salesReturnRepo struct{ db *gorm.DB }

func NewSalesReturnRepository(db *gorm.DB) SalesReturnRepository { return &salesReturnRepo{db: db} }

func (r *salesReturnRepo) DB() *gorm.DB { return r.db }

func (r *salesReturnRepo) Create(ctx context.Context, tx *gorm.DB, ret *model.SalesReturn) error {
	return tx.WithContext(ctx).Create(ret).Error
}

func (r *salesReturnRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SalesReturn, error) {
	var ret model.SalesReturn
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("Transaction.Items").
		First(&ret, id).Error
	return &ret, err
}

func (r *salesReturnRepo) NextNumber(ctx context.Context, tx *gorm.DB, prefix string, date time.Time) (string, error) {
	var last model.SalesReturn
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("return_number LIKE ?", dayPattern(prefix, date)).
		// Length first: a widened five-digit counter must outrank "-9999".
		Order("length(return_number) DESC, return_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FormatNumber(prefix, date, 1), nil
	}
	if err != nil {
		return "", err
	}
	n, err := SequenceOf(last.ReturnNumber)
	if err != nil {
		return "", err
	}
	return FormatNumber(prefix, date, n+1), nil
}

func (r *salesReturnRepo) HasPending(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SalesReturn{}).
		Where("transaction_id = ? AND status = ?", transactionID, model.ReturnPending).
		Count(&count).Error
	return count > 0, err
}

func (r *salesReturnRepo) HasApproved(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SalesReturn{}).
		Where("transaction_id = ? AND status = ?", transactionID, model.ReturnApproved).
		Count(&count).Error
	return count > 0, err
}

func (r *salesReturnRepo) ReturnedQuantities(ctx context.Context, transactionID, exclude uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []struct {
		SalesItemID uuid.UUID
		Total       int
	}
	q := r.db.WithContext(ctx).
		Table("return_items").
		Select("return_items.sales_item_id AS sales_item_id, SUM(return_items.quantity) AS total").
		Joins("JOIN sales_returns ON sales_returns.id = return_items.return_id").
		Where("sales_returns.transaction_id = ? AND sales_returns.status <> ?", transactionID, model.ReturnRejected)
	if exclude != uuid.Nil {
		q = q.Where("sales_returns.id <> ?", exclude)
	}
	if err := q.Group("return_items.sales_item_id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.SalesItemID] = row.Total
	}
	return out, nil
}

func (r *salesReturnRepo) ApprovedQuantity(ctx context.Context, transactionID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Table("return_items").
		Joins("JOIN sales_returns ON sales_returns.id = return_items.return_id").
		Where("sales_returns.transaction_id = ? AND sales_returns.status = ?", transactionID, model.ReturnApproved).
		Select("COALESCE(SUM(return_items.quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *salesReturnRepo) UpdateTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.SalesReturn{}).Where("id = ?", id).Updates(fields).Error
}

func (r *salesReturnRepo) ReplaceItemsTx(tx *gorm.DB, returnID uuid.UUID, items []model.ReturnItem) error {
	if err := tx.Where("return_id = ?", returnID).Delete(&model.ReturnItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].ReturnID = returnID
	}
	return tx.Create(&items).Error
}

func (r *salesReturnRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("return_id = ?", id).Delete(&model.ReturnItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.SalesReturn{}, id).Error
	})
}

func (r *salesReturnRepo) List(ctx context.Context, filter dto.ReturnFilter) ([]model.SalesReturn, int64, error) {
	var rets []model.SalesReturn
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.SalesReturn{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&rets).Error
	return rets, total, err
}
