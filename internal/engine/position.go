package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/admit/internal/queue"
)

// Position returns a waiting session's 1-based rank in its event's queue.
// Active and terminal sessions have no position (ok = false).
//
// Lock-free: the result may be momentarily stale.
func (e *Engine) Position(ctx context.Context, sessionID string) (int, bool, error) {
	pos, ok, err := e.store.Position(ctx, sessionID)
	if err != nil {
		return 0, false, fmt.Errorf("position %s: %w", sessionID, err)
	}
	return pos, ok, nil
}

// Poll returns a session's current status and, while waiting, its position.
// Unknown sessions return SESSION_NOT_FOUND, which callers present to the
// participant the same way as an expired session.
func (e *Engine) Poll(ctx context.Context, sessionID string) (Ticket, error) {
	sess, err := e.store.Session(ctx, sessionID)
	if err != nil {
		return Ticket{}, fmt.Errorf("poll %s: %w", sessionID, err)
	}
	if sess.Status != queue.StatusWaiting {
		return Ticket{Session: sess}, nil
	}

	pos, ok, err := e.store.Position(ctx, sessionID)
	if err != nil {
		return Ticket{}, fmt.Errorf("poll %s: %w", sessionID, err)
	}
	if !ok {
		// Promoted or expired between the two reads.
		sess, err = e.store.Session(ctx, sessionID)
		if err != nil {
			return Ticket{}, fmt.Errorf("poll %s: %w", sessionID, err)
		}
		return Ticket{Session: sess}, nil
	}
	return Ticket{Session: sess, Position: pos}, nil
}

// EventStats summarizes an event's queue.
type EventStats struct {
	EventID   string        `json:"event_id"`
	Capacity  int           `json:"capacity"`
	Timeout   time.Duration `json:"-"`
	Active    int           `json:"active"`
	Waiting   int           `json:"waiting"`
	Completed int           `json:"completed"`
	Expired   int           `json:"expired"`
}

// MarshalJSON renders Timeout as a duration string such as "30m0s".
func (s EventStats) MarshalJSON() ([]byte, error) {
	type plain EventStats
	return json.Marshal(struct {
		plain
		Timeout string `json:"timeout"`
	}{plain(s), s.Timeout.String()})
}

// Stats returns the session counts of a configured event.
func (e *Engine) Stats(ctx context.Context, eventID string) (EventStats, error) {
	ev, ok := e.events.Event(eventID)
	if !ok {
		return EventStats{}, queue.NewEventNotFound(eventID)
	}

	counts, err := e.store.Counts(ctx, eventID)
	if err != nil {
		return EventStats{}, fmt.Errorf("stats %s: %w", eventID, err)
	}

	return EventStats{
		EventID:   eventID,
		Capacity:  ev.Capacity,
		Timeout:   ev.Timeout,
		Active:    counts[queue.StatusActive],
		Waiting:   counts[queue.StatusWaiting],
		Completed: counts[queue.StatusCompleted],
		Expired:   counts[queue.StatusExpired],
	}, nil
}
