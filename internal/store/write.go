package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/admit/internal/queue"
)

// Atomic runs fn inside one IMMEDIATE transaction.
//
// The write lock is taken at BEGIN, so the reads fn performs (active count,
// next waiting session) cannot be invalidated by another unit before fn's
// writes commit. If fn returns an error the transaction is rolled back and
// the error is returned unchanged.
func (s *Store) Atomic(ctx context.Context, fn func(queue.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

// sqlTx implements queue.Tx over a *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) CountActive(ctx context.Context, eventID string) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE event_id = ? AND status = 'active'
	`, eventID).Scan(&n)
	if err != nil {
		return 0, classify("count active", err)
	}
	return n, nil
}

func (t *sqlTx) FindOpen(ctx context.Context, eventID, token string) (queue.Session, bool, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE event_id = ? AND token = ? AND status IN ('waiting', 'active')
	`, eventID, token)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return queue.Session{}, false, nil
	}
	if err != nil {
		return queue.Session{}, false, classify("find open session", err)
	}
	return s, true, nil
}

// Insert writes a new session.
// A conflicting open session for the same token surfaces as RACE_LOST.
func (t *sqlTx) Insert(ctx context.Context, s queue.Session) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO sessions
		(id, event_id, token, status, created_at, entered_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		s.ID,
		s.EventID,
		s.Token,
		string(s.Status),
		toNanos(s.CreatedAt),
		toNullNanos(s.EnteredAt),
		toNullNanos(s.EndedAt),
	)
	if err != nil {
		return classify("insert session", err)
	}
	return nil
}

func (t *sqlTx) Get(ctx context.Context, id string) (queue.Session, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions WHERE id = ?
	`, id)
	s, err := scanSession(row)
	if err != nil {
		return queue.Session{}, notFound(id, "get session", err)
	}
	return s, nil
}

func (t *sqlTx) NextWaiting(ctx context.Context, eventID string) (queue.Session, bool, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE event_id = ? AND status = 'waiting'
		ORDER BY created_at ASC, id COLLATE BINARY ASC
		LIMIT 1
	`, eventID)

	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return queue.Session{}, false, nil
	}
	if err != nil {
		return queue.Session{}, false, classify("next waiting", err)
	}
	return s, true, nil
}

// Transition moves a session from one status to another.
//
// Entering active stamps entered_at; entering a terminal status stamps
// ended_at. The UPDATE is guarded on the current status, so a session that
// another unit already moved is reported as RACE_LOST rather than overwritten.
func (t *sqlTx) Transition(ctx context.Context, id string, from, to queue.Status, at time.Time) error {
	if !from.CanTransition(to) {
		return fmt.Errorf("invalid transition %s -> %s for session %s", from, to, id)
	}

	var (
		res sql.Result
		err error
	)
	if to == queue.StatusActive {
		res, err = t.tx.ExecContext(ctx, `
			UPDATE sessions SET status = ?, entered_at = ?
			WHERE id = ? AND status = ?
		`, string(to), toNanos(at), id, string(from))
	} else {
		res, err = t.tx.ExecContext(ctx, `
			UPDATE sessions SET status = ?, ended_at = ?
			WHERE id = ? AND status = ?
		`, string(to), toNanos(at), id, string(from))
	}
	if err != nil {
		return classify("transition session", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return classify("transition rows affected", err)
	}
	if n == 0 {
		// Either the session is gone or it is no longer in status from.
		if _, err := t.Get(ctx, id); err != nil {
			return err
		}
		return queue.NewRaceLost(fmt.Sprintf("session no longer %s", from), nil)
	}
	return nil
}
