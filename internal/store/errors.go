package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/admit/internal/queue"
)

// classify converts a driver error into the queue error taxonomy.
//
//   - lock contention and open-token UNIQUE conflicts -> RACE_LOST
//   - everything else -> STORE_UNAVAILABLE
//
// Context cancellation is passed through unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var qe *queue.Error
	if errors.As(err, &qe) {
		return err
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch {
		case se.Code == sqlite3.ErrBusy, se.Code == sqlite3.ErrLocked:
			return queue.NewRaceLost(op, err)
		case se.ExtendedCode == sqlite3.ErrConstraintUnique,
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return queue.NewRaceLost(op, err)
		}
	}
	return queue.NewStoreUnavailable(op, err)
}

// notFound maps sql.ErrNoRows to SESSION_NOT_FOUND.
func notFound(id, op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return queue.NewSessionNotFound(id)
	}
	return classify(op, err)
}
