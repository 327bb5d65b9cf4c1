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

type TransferRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.StockTransfer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransfer, error)

	NextNumber(ctx context.Context, tx *gorm.DB, prefix string, date time.Time) (string, error)

	UpdateTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ReplaceItemsTx(tx *gorm.DB, transferID uuid.UUID, items []model.TransferItem) error
	SetItemReceivedTx(tx *gorm.DB, itemID uuid.UUID, qty int) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter dto.TransferFilter) ([]model.StockTransfer, int64, error)

	DB() *gorm.DB
}

type transferRepo struct{ db *gorm.DB }

func NewTransferRepository(db *gorm.DB) TransferRepository { return &transferRepo{db: db} }

func (r *transferRepo) DB() *gorm.DB { return r.db }

func (r *transferRepo) Create(ctx context.Context, tx *gorm.DB, t *model.StockTransfer) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transferRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockTransfer, error) {
	var t model.StockTransfer
	err := r.db.WithContext(ctx).Preload("Items.Product").First(&t, id).Error
	return &t, err
}

func (r *transferRepo) NextNumber(ctx context.Context, tx *gorm.DB, prefix string, date time.Time) (string, error) {
	var last model.StockTransfer
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transfer_number LIKE ?", dayPattern(prefix, date)).
		// Length first: a widened five-digit counter must outrank "-9999".
		Order("length(transfer_number) DESC, transfer_number DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FormatNumber(prefix, date, 1), nil
	}
	if err != nil {
		return "", err
	}
	n, err := SequenceOf(last.TransferNumber)
	if err != nil {
		return "", err
	}
	return FormatNumber(prefix, date, n+1), nil
}

func (r *transferRepo) UpdateTx(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.StockTransfer{}).Where("id = ?", id).Updates(fields).Error
}

func (r *transferRepo) ReplaceItemsTx(tx *gorm.DB, transferID uuid.UUID, items []model.TransferItem) error {
	if err := tx.Where("transfer_id = ?", transferID).Delete(&model.TransferItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].TransferID = transferID
	}
	return tx.Create(&items).Error
}

func (r *transferRepo) SetItemReceivedTx(tx *gorm.DB, itemID uuid.UUID, qty int) error {
	return tx.Model(&model.TransferItem{}).Where("id = ?", itemID).
		Update("received_quantity", qty).Error
}

func (r *transferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transfer_id = ?", id).Delete(&model.TransferItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.StockTransfer{}, id).Error
	})
}

func (r *transferRepo) List(ctx context.Context, filter dto.TransferFilter) ([]model.StockTransfer, int64, error) {
	var transfers []model.StockTransfer
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.StockTransfer{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StoreID != "" {
		q = q.Where("from_store_id = ? OR to_store_id = ?", filter.StoreID, filter.StoreID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items.Product").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&transfers).Error
	return transfers, total, err
}
