package queue

import (
	"context"
	"time"
)

// Tx is one serializable unit of work against the session store.
//
// Every change to an event's active membership (admission, promotion,
// expiry of an active session) happens inside a single Tx so that the
// active count read and the write that depends on it cannot interleave
// with another unit.
type Tx interface {
	// CountActive returns the number of active sessions for the event.
	CountActive(ctx context.Context, eventID string) (int, error)

	// FindOpen returns the waiting or active session holding token, if any.
	FindOpen(ctx context.Context, eventID, token string) (Session, bool, error)

	// Insert writes a new session.
	Insert(ctx context.Context, s Session) error

	// Get reads a session by ID.
	Get(ctx context.Context, id string) (Session, error)

	// NextWaiting returns the waiting session with the smallest (CreatedAt, ID).
	NextWaiting(ctx context.Context, eventID string) (Session, bool, error)

	// Transition moves a session from one status to another at the given time.
	// It fails with RACE_LOST if the session is no longer in status from.
	Transition(ctx context.Context, id string, from, to Status, at time.Time) error
}

// Store is the persistence contract consumed by the engine.
// Reads outside Atomic are unlocked and may observe slightly stale data.
type Store interface {
	// Atomic runs fn inside one transaction. Any error rolls it back.
	Atomic(ctx context.Context, fn func(Tx) error) error

	// Session reads a session by ID.
	Session(ctx context.Context, id string) (Session, error)

	// Position returns the 1-based rank of a waiting session, or false.
	Position(ctx context.Context, id string) (int, bool, error)

	// Counts returns the number of sessions per status for an event.
	Counts(ctx context.Context, eventID string) (map[Status]int, error)

	// OpenEvents lists events with at least one waiting or active session.
	OpenEvents(ctx context.Context) ([]string, error)

	// Stale lists open sessions of an event created strictly before cutoff,
	// in queue order.
	Stale(ctx context.Context, eventID string, cutoff time.Time) ([]Session, error)
}
