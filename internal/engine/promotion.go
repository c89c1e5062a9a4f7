package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/admit/internal/queue"
)

// ExitResult reports what an exit changed.
type ExitResult struct {
	// Session is the exiting session after the exit.
	Session queue.Session

	// Changed is false when the session was already terminal.
	Changed bool

	// Promoted is the waiting session moved into the freed slot, if any.
	Promoted *queue.Session
}

// Complete ends a session whose checkout succeeded.
func (e *Engine) Complete(ctx context.Context, sessionID string) (ExitResult, error) {
	return e.Exit(ctx, sessionID, queue.StatusCompleted)
}

// Cancel ends a session whose participant abandoned checkout or left the queue.
func (e *Engine) Cancel(ctx context.Context, sessionID string) (ExitResult, error) {
	return e.Exit(ctx, sessionID, queue.StatusExpired)
}

// Exit moves a session to a terminal status and backfills the slot it held.
//
// outcome must be completed or expired. A waiting session can only become
// expired, so a waiting session always exits as expired whatever the outcome.
//
// Inside one atomic unit under the event's lock:
//  1. The session is moved to its terminal status. An already terminal
//     session is returned unchanged and nothing else happens.
//  2. If it was active and the event is below capacity, the waiting session
//     with the smallest (CreatedAt, ID) becomes active with EnteredAt = now.
//
// One freed slot yields at most one promotion.
func (e *Engine) Exit(ctx context.Context, sessionID string, outcome queue.Status) (ExitResult, error) {
	return e.exit(ctx, sessionID, outcome, e.clock.Now)
}

// exit is Exit with an explicit time source, so the reaper can stamp its
// sweep time rather than the time each unit happens to run.
func (e *Engine) exit(ctx context.Context, sessionID string, outcome queue.Status, now func() time.Time) (ExitResult, error) {
	if !outcome.Terminal() {
		return ExitResult{}, &InvalidOutcomeError{Outcome: outcome}
	}

	current, err := e.store.Session(ctx, sessionID)
	if err != nil {
		return ExitResult{}, fmt.Errorf("exit %s: %w", sessionID, err)
	}
	if current.Status.Terminal() {
		return ExitResult{Session: current}, nil
	}

	capacity := e.settings(current.EventID).Capacity

	var (
		res         ExitResult
		transitions []queue.Transition
	)

	unlock := e.locks.lock(current.EventID)
	err = e.atomic(ctx, "exit", func(tx queue.Tx) error {
		res, transitions = ExitResult{}, nil

		sess, err := tx.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.Status.Terminal() {
			res.Session = sess
			return nil
		}

		final := outcome
		if sess.Status == queue.StatusWaiting {
			final = queue.StatusExpired
		}

		at := now()
		if err := tx.Transition(ctx, sess.ID, sess.Status, final, at); err != nil {
			return err
		}
		transitions = append(transitions, queue.Transition{
			SessionID: sess.ID,
			EventID:   sess.EventID,
			From:      sess.Status,
			To:        final,
			At:        at,
		})

		wasActive := sess.Status == queue.StatusActive
		sess.Status = final
		sess.EndedAt = &at
		res.Session = sess
		res.Changed = true

		if !wasActive {
			return nil
		}

		promoted, err := e.promoteNext(ctx, tx, sess.EventID, capacity, at)
		if err != nil {
			return err
		}
		if promoted != nil {
			res.Promoted = promoted
			transitions = append(transitions, queue.Transition{
				SessionID: promoted.ID,
				EventID:   promoted.EventID,
				From:      queue.StatusWaiting,
				To:        queue.StatusActive,
				At:        at,
			})
		}
		return nil
	})
	if err == nil && res.Changed {
		e.publish(transitions...)
	}
	unlock()
	if err != nil {
		return ExitResult{}, fmt.Errorf("exit %s: %w", sessionID, err)
	}

	if res.Changed {
		attrs := []any{"event_id", res.Session.EventID, "session_id", res.Session.ID, "status", res.Session.Status}
		if res.Promoted != nil {
			attrs = append(attrs, "promoted", res.Promoted.ID)
		}
		e.logger.Debug("session exited", attrs...)
	}
	return res, nil
}

// promoteNext moves the head of the waiting order into an active slot.
// Must run inside the unit that freed the slot. Returns nil when the event
// is still at capacity or nobody is waiting.
func (e *Engine) promoteNext(ctx context.Context, tx queue.Tx, eventID string, capacity int, at time.Time) (*queue.Session, error) {
	active, err := tx.CountActive(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if active >= capacity {
		return nil, nil
	}

	next, ok, err := tx.NextWaiting(ctx, eventID)
	if err != nil || !ok {
		return nil, err
	}

	if err := tx.Transition(ctx, next.ID, queue.StatusWaiting, queue.StatusActive, at); err != nil {
		return nil, err
	}
	next.Status = queue.StatusActive
	next.EnteredAt = &at
	return &next, nil
}
