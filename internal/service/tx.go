package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

const (
	// numberRetryAttempts bounds the retry loop around document numbering.
	// Retries apply ONLY to duplicate-key collisions on the generated
	// number; every other failure aborts immediately.
	numberRetryAttempts = 5
	numberRetryBackoff  = 50 * time.Millisecond
)

// withNumberRetry runs fn up to numberRetryAttempts times, retrying with a
// fixed backoff when fn reports a duplicate-key violation. The final
// duplicate error is returned for the caller to wrap as SequenceExhausted.
func withNumberRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < numberRetryAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(numberRetryBackoff)
		}
		err = fn()
		if err == nil || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}
