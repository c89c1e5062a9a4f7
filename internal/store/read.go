package store

import (
	"context"
	"time"

	"github.com/roach88/admit/internal/queue"
)

// Session retrieves a single session by ID.
// Returns a SESSION_NOT_FOUND error if it does not exist.
func (s *Store) Session(ctx context.Context, id string) (queue.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE id = ?
	`, id)
	sess, err := scanSession(row)
	if err != nil {
		return queue.Session{}, notFound(id, "read session", err)
	}
	return sess, nil
}

// Position returns the 1-based rank of a waiting session among the waiting
// sessions of its event, ordered by (created_at, id). Sessions in any other
// status have no position.
func (s *Store) Position(ctx context.Context, id string) (int, bool, error) {
	var (
		status string
		ahead  int
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT s.status, (
			SELECT COUNT(*) FROM sessions w
			WHERE w.event_id = s.event_id
			  AND w.status = 'waiting'
			  AND (w.created_at < s.created_at
			       OR (w.created_at = s.created_at AND w.id < s.id))
		)
		FROM sessions s
		WHERE s.id = ?
	`, id).Scan(&status, &ahead)
	if err != nil {
		return 0, false, notFound(id, "read position", err)
	}

	if queue.Status(status) != queue.StatusWaiting {
		return 0, false, nil
	}
	return ahead + 1, true, nil
}

// Counts returns the number of sessions per status for an event.
// Statuses with no sessions are present with a zero count.
func (s *Store) Counts(ctx context.Context, eventID string) (map[queue.Status]int, error) {
	counts := map[queue.Status]int{
		queue.StatusWaiting:   0,
		queue.StatusActive:    0,
		queue.StatusCompleted: 0,
		queue.StatusExpired:   0,
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM sessions
		WHERE event_id = ?
		GROUP BY status
	`, eventID)
	if err != nil {
		return nil, classify("count sessions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, classify("scan counts", err)
		}
		counts[queue.Status(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate counts", err)
	}
	return counts, nil
}

// OpenEvents lists events with at least one waiting or active session,
// in byte-wise event ID order.
func (s *Store) OpenEvents(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT event_id FROM sessions
		WHERE status IN ('waiting', 'active')
		ORDER BY event_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, classify("list open events", err)
	}
	defer rows.Close()

	events := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, classify("scan open events", err)
		}
		events = append(events, id)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate open events", err)
	}
	return events, nil
}

// Stale lists waiting and active sessions of an event created strictly
// before cutoff, in queue order.
func (s *Store) Stale(ctx context.Context, eventID string, cutoff time.Time) ([]queue.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE event_id = ?
		  AND status IN ('waiting', 'active')
		  AND created_at < ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, eventID, toNanos(cutoff))
	if err != nil {
		return nil, classify("list stale sessions", err)
	}

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, classify("scan stale sessions", err)
	}
	return sessions, nil
}

// ListSessions returns every session of an event in queue order.
// Used by status surfaces and test snapshots.
func (s *Store) ListSessions(ctx context.Context, eventID string) ([]queue.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE event_id = ?
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, eventID)
	if err != nil {
		return nil, classify("list sessions", err)
	}

	sessions, err := scanSessions(rows)
	if err != nil {
		return nil, classify("scan sessions", err)
	}
	return sessions, nil
}
