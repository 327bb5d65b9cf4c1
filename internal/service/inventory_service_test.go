package service

import (
	"context"
	"testing"

	"github.com/dimaswi/pos-sub002/internal/apierror"
	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyChangeTxCreatesBalanceAndMovement(t *testing.T) {
	repo := newStubInventoryRepo()
	svc := NewInventoryService(repo)
	storeID, productID := uuid.New(), uuid.New()

	// No balance row exists yet; the change must create one.
	inv, err := svc.ApplyChangeTx(nil, StockChange{
		StoreID:       storeID,
		ProductID:     productID,
		Delta:         5,
		Type:          model.MovementAdjustment,
		ReferenceType: model.RefAdjustment,
		ReferenceID:   uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, inv.Quantity)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, 5, m.QuantityChange)
	assert.Equal(t, 0, m.QuantityBefore)
	assert.Equal(t, 5, m.QuantityAfter)
	require.NotNil(t, m.ReferenceType)
	assert.Equal(t, model.RefAdjustment, *m.ReferenceType)
}

func TestAdjust(t *testing.T) {
	repo := newStubInventoryRepo()
	svc := NewInventoryService(repo)
	storeID, productID := uuid.New(), uuid.New()
	repo.seed(storeID, productID, 40, 10)

	note := "cycle count correction"
	resp, err := svc.Adjust(context.Background(), uuid.New(), dto.AdjustStockRequest{
		StoreID:        storeID.String(),
		ProductID:      productID.String(),
		QuantityChange: -3,
		Note:           &note,
	})
	require.NoError(t, err)

	assert.Equal(t, model.MovementAdjustment, resp.Type)
	assert.Equal(t, -3, resp.QuantityChange)
	assert.Equal(t, 40, resp.QuantityBefore)
	assert.Equal(t, 37, resp.QuantityAfter)
	assert.Equal(t, 37, repo.quantity(storeID, productID))
}

func TestAdjustRejectsZeroChange(t *testing.T) {
	svc := NewInventoryService(newStubInventoryRepo())

	_, err := svc.Adjust(context.Background(), uuid.New(), dto.AdjustStockRequest{
		StoreID:        uuid.NewString(),
		ProductID:      uuid.NewString(),
		QuantityChange: 0,
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestLowStock(t *testing.T) {
	repo := newStubInventoryRepo()
	svc := NewInventoryService(repo)
	storeA, storeB := uuid.New(), uuid.New()
	low, ok := uuid.New(), uuid.New()
	repo.seed(storeA, low, 3, 10)
	repo.seed(storeA, ok, 50, 10)
	repo.seed(storeB, low, 2, 10)

	all, err := svc.LowStock(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.LowStock(context.Background(), &storeA)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, storeA.String(), scoped[0].StoreID)
	assert.Equal(t, 3, scoped[0].Quantity)
}
