package repository

import (
	"context"

	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository is a collaborator lookup — product CRUD lives outside
// the settlement core, which only reads immutable snapshots at call time.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	Create(ctx context.Context, p *model.Product) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("barcode = ? AND active = true", barcode).First(&p).Error
	return &p, err
}

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}
