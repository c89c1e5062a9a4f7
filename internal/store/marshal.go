package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/admit/internal/queue"
)

const sessionColumns = `id, event_id, token, status, created_at, entered_at, ended_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanSession scans one sessions row selected with sessionColumns.
func scanSession(r rowScanner) (queue.Session, error) {
	var (
		s         queue.Session
		status    string
		createdAt int64
		enteredAt sql.NullInt64
		endedAt   sql.NullInt64
	)
	if err := r.Scan(&s.ID, &s.EventID, &s.Token, &status, &createdAt, &enteredAt, &endedAt); err != nil {
		return queue.Session{}, err
	}

	st, err := queue.ParseStatus(status)
	if err != nil {
		return queue.Session{}, fmt.Errorf("session %s: %w", s.ID, err)
	}
	s.Status = st
	s.CreatedAt = fromNanos(createdAt)
	s.EnteredAt = fromNullNanos(enteredAt)
	s.EndedAt = fromNullNanos(endedAt)
	return s, nil
}

// scanSessions drains rows into a non-nil slice.
func scanSessions(rows *sql.Rows) ([]queue.Session, error) {
	defer rows.Close()

	sessions := []queue.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func toNullNanos(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toNanos(*t), Valid: true}
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func fromNullNanos(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromNanos(n.Int64)
	return &t
}
