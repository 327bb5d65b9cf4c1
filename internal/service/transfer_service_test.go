package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimaswi/pos-sub002/internal/apierror"
	"github.com/dimaswi/pos-sub002/internal/dto"
	"github.com/dimaswi/pos-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type transferFixture struct {
	svc       TransferService
	repo      *stubTransferRepo
	inventory *stubInventoryRepo

	fromStore uuid.UUID
	toStore   uuid.UUID
	product   *model.Product
	actor     uuid.UUID
}

func newTransferFixture() *transferFixture {
	f := &transferFixture{
		repo:      newStubTransferRepo(),
		inventory: newStubInventoryRepo(),
		fromStore: uuid.New(),
		toStore:   uuid.New(),
		actor:     uuid.New(),
	}
	f.product = &model.Product{
		ID:        uuid.New(),
		Barcode:   "899123450002",
		Name:      "Mineral Water 600ml",
		SellPrice: dec("4000"),
		Active:    true,
	}
	f.inventory.seed(f.fromStore, f.product.ID, 50, 5)
	f.inventory.seed(f.toStore, f.product.ID, 10, 5)
	f.svc = NewTransferService(
		f.repo, newStubProductRepo(f.product), NewInventoryService(f.inventory), "TRF",
	)
	return f
}

func (f *transferFixture) createRequest(qty int, draft bool) dto.CreateTransferRequest {
	return dto.CreateTransferRequest{
		FromStoreID: f.fromStore.String(),
		ToStoreID:   f.toStore.String(),
		Draft:       draft,
		Items: []dto.TransferItemRequest{
			{ProductID: f.product.ID.String(), Quantity: qty},
		},
	}
}

func (f *transferFixture) create(t *testing.T, qty int, draft bool) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), f.actor, f.createRequest(qty, draft))
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func TestTransferCreate(t *testing.T) {
	f := newTransferFixture()

	resp, err := f.svc.Create(context.Background(), f.actor, f.createRequest(20, false))
	require.NoError(t, err)

	wantNumber := fmt.Sprintf("TRF-%s-0001", time.Now().Format("20060102"))
	assert.Equal(t, wantNumber, resp.TransferNumber)
	assert.Equal(t, model.TransferPending, resp.Status)

	// Nothing moves until shipment.
	assert.Equal(t, 50, f.inventory.quantity(f.fromStore, f.product.ID))
	assert.Equal(t, 10, f.inventory.quantity(f.toStore, f.product.ID))
}

func TestTransferCreateDraft(t *testing.T) {
	f := newTransferFixture()

	resp, err := f.svc.Create(context.Background(), f.actor, f.createRequest(20, true))
	require.NoError(t, err)
	assert.Equal(t, model.TransferDraft, resp.Status)
}

func TestTransferCreateSameStoreRejected(t *testing.T) {
	f := newTransferFixture()
	req := f.createRequest(20, false)
	req.ToStoreID = req.FromStoreID

	_, err := f.svc.Create(context.Background(), f.actor, req)
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
}

func TestTransferSubmitDraftOnly(t *testing.T) {
	f := newTransferFixture()
	id := f.create(t, 20, true)

	resp, err := f.svc.Submit(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TransferPending, resp.Status)

	_, err = f.svc.Submit(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))
}

func TestTransferWorkflowEdges(t *testing.T) {
	f := newTransferFixture()

	// pending → rejected is terminal
	id := f.create(t, 20, false)
	resp, err := f.svc.Reject(context.Background(), f.actor, id)
	require.NoError(t, err)
	assert.Equal(t, model.TransferRejected, resp.Status)
	_, err = f.svc.Approve(context.Background(), f.actor, id)
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))

	// approved → cancelled is still possible; shipped is not cancellable
	id = f.create(t, 20, false)
	_, err = f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), id)
	require.NoError(t, err)

	id = f.create(t, 20, false)
	_, err = f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)
	_, err = f.svc.Ship(context.Background(), f.actor, id)
	require.NoError(t, err)
	_, err = f.svc.Cancel(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))

	// shipping requires approval first
	id = f.create(t, 20, false)
	_, err = f.svc.Ship(context.Background(), f.actor, id)
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))
}

func TestTransferShipDebitsSender(t *testing.T) {
	f := newTransferFixture()
	id := f.create(t, 20, false)
	_, err := f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)

	resp, err := f.svc.Ship(context.Background(), f.actor, id)
	require.NoError(t, err)
	assert.Equal(t, model.TransferShipped, resp.Status)

	assert.Equal(t, 30, f.inventory.quantity(f.fromStore, f.product.ID))
	assert.Equal(t, 10, f.inventory.quantity(f.toStore, f.product.ID))

	require.Len(t, f.inventory.movements, 1)
	m := f.inventory.movements[0]
	assert.Equal(t, model.MovementTransferOut, m.Type)
	assert.Equal(t, -20, m.QuantityChange)
}

func TestTransferReceiveFullCount(t *testing.T) {
	f := newTransferFixture()
	id := f.create(t, 20, false)
	_, err := f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)
	_, err = f.svc.Ship(context.Background(), f.actor, id)
	require.NoError(t, err)

	// No counts given: every line is received at its shipped quantity.
	resp, err := f.svc.Receive(context.Background(), f.actor, id, dto.ReceiveTransferRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.TransferReceived, resp.Status)
	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].ReceivedQuantity)
	assert.Equal(t, 20, *resp.Items[0].ReceivedQuantity)

	assert.Equal(t, 30, f.inventory.quantity(f.fromStore, f.product.ID))
	assert.Equal(t, 30, f.inventory.quantity(f.toStore, f.product.ID))
}

func TestTransferReceiveShortCount(t *testing.T) {
	f := newTransferFixture()
	id := f.create(t, 20, false)
	_, err := f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)
	shipped, err := f.svc.Ship(context.Background(), f.actor, id)
	require.NoError(t, err)

	// Two units lost in transit.
	resp, err := f.svc.Receive(context.Background(), f.actor, id, dto.ReceiveTransferRequest{
		Items: []dto.ReceiveItemRequest{
			{TransferItemID: shipped.Items[0].ID, ReceivedQuantity: 18},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Items[0].ReceivedQuantity)
	assert.Equal(t, 18, *resp.Items[0].ReceivedQuantity)

	// The sender lost 20, the receiver only gained 18; the 2 missing units
	// stay visible as the gap between the two movements.
	assert.Equal(t, 30, f.inventory.quantity(f.fromStore, f.product.ID))
	assert.Equal(t, 28, f.inventory.quantity(f.toStore, f.product.ID))

	require.Len(t, f.inventory.movements, 2)
	assert.Equal(t, model.MovementTransferIn, f.inventory.movements[1].Type)
	assert.Equal(t, 18, f.inventory.movements[1].QuantityChange)
}

func TestTransferReceiveOverCountRejected(t *testing.T) {
	f := newTransferFixture()
	id := f.create(t, 20, false)
	_, err := f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)
	shipped, err := f.svc.Ship(context.Background(), f.actor, id)
	require.NoError(t, err)

	_, err = f.svc.Receive(context.Background(), f.actor, id, dto.ReceiveTransferRequest{
		Items: []dto.ReceiveItemRequest{
			{TransferItemID: shipped.Items[0].ID, ReceivedQuantity: 25},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindQuantityExceeded, apierror.KindOf(err))

	// Rejected receive leaves the destination untouched.
	assert.Equal(t, 10, f.inventory.quantity(f.toStore, f.product.ID))
}

func TestTransferReceiveZeroCountSkipsCredit(t *testing.T) {
	f := newTransferFixture()
	id := f.create(t, 20, false)
	_, err := f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)
	shipped, err := f.svc.Ship(context.Background(), f.actor, id)
	require.NoError(t, err)

	resp, err := f.svc.Receive(context.Background(), f.actor, id, dto.ReceiveTransferRequest{
		Items: []dto.ReceiveItemRequest{
			{TransferItemID: shipped.Items[0].ID, ReceivedQuantity: 0},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Items[0].ReceivedQuantity)
	assert.Equal(t, 0, *resp.Items[0].ReceivedQuantity)

	assert.Equal(t, 10, f.inventory.quantity(f.toStore, f.product.ID))
	// Only the outbound movement exists.
	require.Len(t, f.inventory.movements, 1)
}

func TestTransferUpdateDraftAndPendingOnly(t *testing.T) {
	f := newTransferFixture()
	id := f.create(t, 20, false)

	note := "restock run"
	resp, err := f.svc.Update(context.Background(), id, dto.UpdateTransferRequest{
		Note: &note,
		Items: []dto.TransferItemRequest{
			{ProductID: f.product.ID.String(), Quantity: 15},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 15, resp.Items[0].Quantity)

	_, err = f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)

	_, err = f.svc.Update(context.Background(), id, dto.UpdateTransferRequest{
		Items: []dto.TransferItemRequest{
			{ProductID: f.product.ID.String(), Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))
}

func TestTransferDeleteWhileEditable(t *testing.T) {
	f := newTransferFixture()

	// Draft and pending transfers are both still editable, so both delete.
	id := f.create(t, 20, true)
	require.NoError(t, f.svc.Delete(context.Background(), id))
	_, err := f.svc.Get(context.Background(), id)
	require.Error(t, err)

	id = f.create(t, 20, false)
	require.NoError(t, f.svc.Delete(context.Background(), id))
	_, err = f.svc.Get(context.Background(), id)
	require.Error(t, err)

	// Once approved the transfer is part of the audit trail and stays.
	id = f.create(t, 20, false)
	_, err = f.svc.Approve(context.Background(), f.actor, id)
	require.NoError(t, err)
	err = f.svc.Delete(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, apierror.KindInvalidState, apierror.KindOf(err))
	_, err = f.svc.Get(context.Background(), id)
	require.NoError(t, err)
}
