package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/admit/internal/queue"
)

var testEpoch = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession builds a session with minimal required fields.
// Active sessions get EnteredAt = createdAt.
func createTestSession(id, eventID, token string, status queue.Status, createdAt time.Time) queue.Session {
	s := queue.Session{
		ID:        id,
		EventID:   eventID,
		Token:     token,
		Status:    status,
		CreatedAt: createdAt,
	}
	if status == queue.StatusActive {
		entered := createdAt
		s.EnteredAt = &entered
	}
	return s
}

// insertSessions writes sessions in one Atomic unit, failing the test on error.
func insertSessions(t *testing.T, s *Store, sessions ...queue.Session) {
	t.Helper()
	err := s.Atomic(context.Background(), func(tx queue.Tx) error {
		for _, sess := range sessions {
			if err := tx.Insert(context.Background(), sess); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert sessions: %v", err)
	}
}
