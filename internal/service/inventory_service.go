package service

import (
	"context"

	"github.com/dimaswi/pos-sub002/internal/apierror"
	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"
	"github.com/dimaswi/pos-sub002/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockChange describes one inventory mutation and the movement row that
// documents it. Delta is signed; the unit cost defaults to the balance's
// current average cost.
type StockChange struct {
	StoreID       uuid.UUID
	ProductID     uuid.UUID
	Delta         int
	Type          string
	ReferenceType string
	ReferenceID   uuid.UUID
	Note          *string
	CreatedBy     *uuid.UUID
}

// InventoryService is the inventory ledger: every quantity change goes
// through ApplyChangeTx so the balance and the audit trail move together.
type InventoryService interface {
	// ApplyChangeTx mutates one (store, product) balance inside the caller's
	// transaction and appends the StockMovement. Returns the balance with
	// its post-change quantity so callers can run low-stock checks.
	ApplyChangeTx(tx *gorm.DB, ch StockChange) (*model.Inventory, error)

	// Adjust is the manual stock correction endpoint (own transaction).
	Adjust(ctx context.Context, userID uuid.UUID, req dto.AdjustStockRequest) (*dto.MovementResponse, error)

	Movements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
	LowStock(ctx context.Context, storeID *uuid.UUID) ([]dto.InventoryResponse, error)
}

type inventoryService struct {
	repo repository.InventoryRepository
}

func NewInventoryService(repo repository.InventoryRepository) InventoryService {
	return &inventoryService{repo: repo}
}

func (s *inventoryService) ApplyChangeTx(tx *gorm.DB, ch StockChange) (*model.Inventory, error) {
	inv, err := s.repo.GetOrCreateTx(tx, ch.StoreID, ch.ProductID)
	if err != nil {
		return nil, err
	}
	before := inv.Quantity

	if err := s.repo.AdjustQuantityTx(tx, ch.StoreID, ch.ProductID, ch.Delta); err != nil {
		return nil, err
	}

	refType := ch.ReferenceType
	refID := ch.ReferenceID
	mov := &model.StockMovement{
		StoreID:        ch.StoreID,
		ProductID:      ch.ProductID,
		Type:           ch.Type,
		QuantityChange: ch.Delta,
		QuantityBefore: before,
		QuantityAfter:  before + ch.Delta,
		UnitCost:       inv.AverageCost,
		ReferenceType:  &refType,
		ReferenceID:    &refID,
		Note:           ch.Note,
		CreatedBy:      ch.CreatedBy,
	}
	if err := s.repo.CreateMovementTx(tx, mov); err != nil {
		return nil, err
	}

	inv.Quantity = before + ch.Delta
	return inv, nil
}

func (s *inventoryService) Adjust(ctx context.Context, userID uuid.UUID, req dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apierror.Validation("invalid store_id")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation("invalid product_id")
	}
	if req.QuantityChange == 0 {
		return nil, apierror.Validation("quantity_change must not be zero")
	}

	var inv *model.Inventory
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		inv, err = s.ApplyChangeTx(tx, StockChange{
			StoreID:       storeID,
			ProductID:     productID,
			Delta:         req.QuantityChange,
			Type:          model.MovementAdjustment,
			ReferenceType: model.RefAdjustment,
			ReferenceID:   uuid.New(),
			Note:          req.Note,
			CreatedBy:     &userID,
		})
		return err
	})
	if txErr != nil {
		return nil, apierror.Internal(txErr)
	}

	refType := model.RefAdjustment
	return &dto.MovementResponse{
		StoreID:        storeID.String(),
		ProductID:      productID.String(),
		Type:           model.MovementAdjustment,
		QuantityChange: req.QuantityChange,
		QuantityBefore: inv.Quantity - req.QuantityChange,
		QuantityAfter:  inv.Quantity,
		UnitCost:       inv.AverageCost,
		ReferenceType:  &refType,
		Note:           req.Note,
	}, nil
}

func (s *inventoryService) Movements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movs, total, err := s.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	items := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		items = append(items, movementToResponse(&m))
	}
	return &dto.MovementListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *inventoryService) LowStock(ctx context.Context, storeID *uuid.UUID) ([]dto.InventoryResponse, error) {
	invs, err := s.repo.BelowMinimum(ctx, storeID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	out := make([]dto.InventoryResponse, 0, len(invs))
	for _, inv := range invs {
		name := ""
		if inv.Product != nil {
			name = inv.Product.Name
		}
		out = append(out, dto.InventoryResponse{
			StoreID:      inv.StoreID.String(),
			ProductID:    inv.ProductID.String(),
			Product:      name,
			Quantity:     inv.Quantity,
			AverageCost:  inv.AverageCost,
			MinimumStock: inv.MinimumStock,
			Location:     inv.Location,
		})
	}
	return out, nil
}

func movementToResponse(m *model.StockMovement) dto.MovementResponse {
	var refID *string
	if m.ReferenceID != nil {
		s := m.ReferenceID.String()
		refID = &s
	}
	return dto.MovementResponse{
		ID:             m.ID.String(),
		StoreID:        m.StoreID.String(),
		ProductID:      m.ProductID.String(),
		Type:           m.Type,
		QuantityChange: m.QuantityChange,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		UnitCost:       m.UnitCost,
		ReferenceType:  m.ReferenceType,
		ReferenceID:    refID,
		Note:           m.Note,
		CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
