package repository

import (
	"context"

	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryRepository owns the per-(store, product) stock balances and the
// append-only movement log.
type InventoryRepository interface {
	Find(ctx context.Context, storeID, productID uuid.UUID) (*model.Inventory, error)
	FindTx(tx *gorm.DB, storeID, productID uuid.UUID) (*model.Inventory, error)

	// GetOrCreateTx returns the balance row, creating a zero row when the
	// (store, product) pair has never held stock.
	GetOrCreateTx(tx *gorm.DB, storeID, productID uuid.UUID) (*model.Inventory, error)

	// AdjustQuantityTx applies an atomic column increment so concurrent
	// writers cannot lose updates. Negative delta decrements; no floor.
	AdjustQuantityTx(tx *gorm.DB, storeID, productID uuid.UUID, delta int) error

	CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error

	ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error)

	// BelowMinimum lists balances at or under their minimum stock.
	BelowMinimum(ctx context.Context, storeID *uuid.UUID) ([]model.Inventory, error)

	DB() *gorm.DB
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepository(db *gorm.DB) InventoryRepository { return &inventoryRepo{db: db} }

func (r *inventoryRepo) DB() *gorm.DB { return r.db }

func (r *inventoryRepo) Find(ctx context.Context, storeID, productID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		First(&inv).Error
	return &inv, err
}

func (r *inventoryRepo) FindTx(tx *gorm.DB, storeID, productID uuid.UUID) (*model.Inventory, error) {
	var inv model.Inventory
	err := tx.Where("store_id = ? AND product_id = ?", storeID, productID).First(&inv).Error
	return &inv, err
}

func (r *inventoryRepo) GetOrCreateTx(tx *gorm.DB, storeID, productID uuid.UUID) (*model.Inventory, error) {
	inv, err := r.FindTx(tx, storeID, productID)
	if err == nil {
		return inv, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	inv = &model.Inventory{StoreID: storeID, ProductID: productID}
	if err := tx.Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *inventoryRepo) AdjustQuantityTx(tx *gorm.DB, storeID, productID uuid.UUID, delta int) error {
	return tx.Model(&model.Inventory{}).
		Where("store_id = ? AND product_id = ?", storeID, productID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *inventoryRepo) CreateMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *inventoryRepo) ListMovements(ctx context.Context, filter dto.MovementFilter) ([]model.StockMovement, int64, error) {
	var movs []model.StockMovement
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Product").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&movs).Error
	return movs, total, err
}

func (r *inventoryRepo) BelowMinimum(ctx context.Context, storeID *uuid.UUID) ([]model.Inventory, error) {
	var invs []model.Inventory
	q := r.db.WithContext(ctx).
		Where("quantity <= minimum_stock")
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}
	err := q.Preload("Product").Preload("Store").Find(&invs).Error
	return invs, err
}
