package service

import (
	"github.com/dimaswi/pos-sub002/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Discount usage bookkeeping shared by settlement and both halves of the
// reversal engine. Counters move through atomic column updates; the
// activation flags are re-derived inside the same transaction.

// consumeDiscountTx increments usage and auto-deactivates the code the
// moment it reaches its limit.
func consumeDiscountTx(tx *gorm.DB, repo repository.DiscountRepository, id uuid.UUID) error {
	if err := repo.AddUsageTx(tx, id, 1); err != nil {
		return err
	}
	d, err := repo.FindByIDTx(tx, id)
	if err != nil {
		return err
	}
	if d.UsageLimit != nil && d.UsageCount >= *d.UsageLimit && d.IsActive {
		return repo.SetActivationTx(tx, id, false, true)
	}
	return nil
}

// releaseDiscountTx decrements usage (floored at zero) and reactivates the
// code only when it was auto-deactivated by hitting its limit — a manually
// disabled code stays off.
func releaseDiscountTx(tx *gorm.DB, repo repository.DiscountRepository, id uuid.UUID) error {
	if err := repo.AddUsageTx(tx, id, -1); err != nil {
		return err
	}
	d, err := repo.FindByIDTx(tx, id)
	if err != nil {
		return err
	}
	if d.AutoDeactivated && (d.UsageLimit == nil || d.UsageCount < *d.UsageLimit) {
		return repo.SetActivationTx(tx, id, true, false)
	}
	return nil
}
