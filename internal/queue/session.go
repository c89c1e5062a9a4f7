package queue

import (
	"fmt"
	"time"
)

// Status is a session's position in the admission lifecycle.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// ParseStatus converts a stored status string back into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusWaiting, StatusActive, StatusCompleted, StatusExpired:
		return st, nil
	default:
		return "", fmt.Errorf("unknown session status %q", s)
	}
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusExpired
}

// Open reports whether the session still holds a slot or a queue place.
func (s Status) Open() bool {
	return s == StatusWaiting || s == StatusActive
}

// CanTransition reports whether moving from s to next is a forward transition.
//
// Allowed:
//
//	waiting -> active | expired
//	active  -> completed | expired
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusWaiting:
		return next == StatusActive || next == StatusExpired
	case StatusActive:
		return next == StatusCompleted || next == StatusExpired
	default:
		return false
	}
}

// Session is one participant's membership in an event's queue.
type Session struct {
	ID        string     `json:"session_id"`
	EventID   string     `json:"event_id"`
	Token     string     `json:"token"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	EnteredAt *time.Time `json:"entered_at,omitempty"` // nil until first active
	EndedAt   *time.Time `json:"ended_at,omitempty"`   // set on completed|expired
}

// Less reports whether a is ahead of b in queue order.
// Ties on CreatedAt fall back to a byte-wise ID comparison, matching the
// store's ORDER BY created_at, id COLLATE BINARY.
func Less(a, b Session) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Transition is a committed status change of one session.
type Transition struct {
	SessionID string    `json:"session_id"`
	EventID   string    `json:"event_id"`
	From      Status    `json:"from,omitempty"` // empty for a newly admitted session
	To        Status    `json:"to"`
	At        time.Time `json:"at"`
}
