package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name        string
		originalQty int
		returnedQty int
		voided      bool
		want        string
	}{
		{"untouched", 10, 0, false, StatusCompleted},
		{"under half", 10, 4, false, StatusCompleted},
		{"exactly half", 10, 5, false, StatusRefunded},
		{"over half", 10, 9, false, StatusRefunded},
		{"everything back", 10, 10, false, StatusRefunded},
		{"voided wins", 10, 10, true, StatusVoided},
		{"voided with nothing returned", 10, 0, true, StatusVoided},
		{"zero quantity guards the division", 0, 0, false, StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveStatus(tc.originalQty, tc.returnedQty, tc.voided))
		})
	}
}

func TestDiscountUsableAt(t *testing.T) {
	now := time.Now()
	limit := 5

	d := Discount{IsActive: true}
	assert.True(t, d.UsableAt(now))

	d = Discount{IsActive: false}
	assert.False(t, d.UsableAt(now))

	future := now.Add(time.Hour)
	d = Discount{IsActive: true, StartDate: &future}
	assert.False(t, d.UsableAt(now))

	past := now.Add(-time.Hour)
	d = Discount{IsActive: true, EndDate: &past}
	assert.False(t, d.UsableAt(now))

	d = Discount{IsActive: true, UsageLimit: &limit, UsageCount: 5}
	assert.False(t, d.UsableAt(now))

	d = Discount{IsActive: true, UsageLimit: &limit, UsageCount: 4}
	assert.True(t, d.UsableAt(now))
}

func TestPaymentMethodFee(t *testing.T) {
	m := PaymentMethod{
		FeePercentage: decimal.RequireFromString("1.5"),
		FeeFixed:      decimal.RequireFromString("500"),
	}
	fee := m.Fee(decimal.RequireFromString("100000"))
	assert.True(t, fee.Equal(decimal.RequireFromString("2000")), "fee %s", fee)

	free := PaymentMethod{FeePercentage: decimal.Zero, FeeFixed: decimal.Zero}
	assert.True(t, free.Fee(decimal.RequireFromString("100000")).IsZero())
}
