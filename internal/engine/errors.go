package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/admit/internal/queue"
)

// ErrFeedClosed is returned by Feed.Next once the feed is closed and drained.
var ErrFeedClosed = errors.New("feed closed")

// InvalidOutcomeError is returned by Exit for a non-terminal outcome.
type InvalidOutcomeError struct {
	Outcome queue.Status
}

func (e *InvalidOutcomeError) Error() string {
	return fmt.Sprintf("exit outcome must be completed or expired, got %q", e.Outcome)
}

// atomic runs fn as one store unit, retrying once on RACE_LOST.
//
// fn may run twice, so it must reset any state it captures before writing to
// it. A second RACE_LOST is reported as STORE_UNAVAILABLE: the caller sees a
// retryable store condition, never the internal conflict.
func (e *Engine) atomic(ctx context.Context, op string, fn func(queue.Tx) error) error {
	err := e.store.Atomic(ctx, fn)
	if !queue.IsRaceLost(err) {
		return err
	}

	e.logger.Debug("atomic unit lost a race, retrying", "op", op, "error", err)
	err = e.store.Atomic(ctx, fn)
	if queue.IsRaceLost(err) {
		return queue.NewStoreUnavailable(op+": conflict persisted after retry", err)
	}
	return err
}
