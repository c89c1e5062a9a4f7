package engine

import (
	"context"
	"fmt"

	"github.com/roach88/admit/internal/queue"
)

// Enter admits a participant to an event's queue.
//
// Inside one atomic unit under the event's lock:
//  1. An open session already holding token is returned as-is (idempotent
//     re-entry; Ticket.Reentered is set).
//  2. Otherwise the active sessions are counted. Below capacity the new
//     session starts active with EnteredAt = now; at capacity it waits.
//
// Every successful call returns a committed session with a definite status.
// A failed call writes nothing.
//
// Errors: EVENT_NOT_FOUND for an unconfigured event, INVALID_TOKEN for an
// empty token, STORE_UNAVAILABLE for persistence failures.
func (e *Engine) Enter(ctx context.Context, eventID, token string) (Ticket, error) {
	ev, ok := e.events.Event(eventID)
	if !ok {
		return Ticket{}, queue.NewEventNotFound(eventID)
	}

	token = queue.NormalizeToken(token)
	if token == "" {
		return Ticket{}, queue.NewInvalidToken(eventID)
	}

	var (
		sess      queue.Session
		reentered bool
	)

	unlock := e.locks.lock(eventID)
	err := e.atomic(ctx, "enter", func(tx queue.Tx) error {
		existing, found, err := tx.FindOpen(ctx, eventID, token)
		if err != nil {
			return err
		}
		if found {
			sess, reentered = existing, true
			return nil
		}

		active, err := tx.CountActive(ctx, eventID)
		if err != nil {
			return err
		}

		now := e.clock.Now()
		sess = queue.Session{
			ID:        e.ids.NewID(),
			EventID:   eventID,
			Token:     token,
			Status:    queue.StatusWaiting,
			CreatedAt: now,
		}
		reentered = false
		if active < ev.Capacity {
			sess.Status = queue.StatusActive
			sess.EnteredAt = &now
		}
		return tx.Insert(ctx, sess)
	})
	if err == nil && !reentered {
		// Published under the lock so the feed follows commit order.
		e.publish(queue.Transition{
			SessionID: sess.ID,
			EventID:   eventID,
			To:        sess.Status,
			At:        sess.CreatedAt,
		})
	}
	unlock()
	if err != nil {
		return Ticket{}, fmt.Errorf("enter %s: %w", eventID, err)
	}

	if reentered {
		e.logger.Debug("session re-entered", "event_id", eventID, "session_id", sess.ID, "status", sess.Status)
	} else {
		e.logger.Debug("session admitted", "event_id", eventID, "session_id", sess.ID, "status", sess.Status)
	}

	return e.ticket(ctx, sess, reentered), nil
}

// ticket attaches a position to a committed session.
// The entry is already durable, so a failed position read is logged and the
// ticket is returned without one; the next poll reports it.
func (e *Engine) ticket(ctx context.Context, sess queue.Session, reentered bool) Ticket {
	t := Ticket{Session: sess, Reentered: reentered}
	if sess.Status != queue.StatusWaiting {
		return t
	}

	pos, ok, err := e.store.Position(ctx, sess.ID)
	if err != nil {
		e.logger.Warn("position read failed after entry", "session_id", sess.ID, "error", err)
		return t
	}
	if ok {
		t.Position = pos
	}
	return t
}
