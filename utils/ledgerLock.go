package utils

import (
	"context"
	"errors"
	"sync"
	"time"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"github.com/bsm/redislock"
)

const ledgerLockKey = "LedgerLock:balance_entries"

var localLedgerMu sync.Mutex

// WithLedgerLock serializes mutations of the bank ledger so the full
// recompute of balance_after cannot interleave with a concurrent write.
// Uses redislock when Redis is configured, otherwise an in-process mutex
// (sufficient for the single-instance deployment and for tests).
func WithLedgerLock(ctx context.Context, fn func() error) error {
	locker := config.GetRedisLock()
	if locker == nil {
		localLedgerMu.Lock()
		defer localLedgerMu.Unlock()
		return fn()
	}

	backoff := redislock.LinearBackoff(100 * time.Millisecond)
	lock, err := locker.Obtain(ctx, ledgerLockKey, 30*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(backoff, 50),
	})
	if err == redislock.ErrNotObtained {
		return errors.New("could not obtain ledger lock")
	} else if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release(ctx)
	}()

	return fn()
}
