package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/roach88/admit/internal/queue"
)

func TestSession_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Session(context.Background(), "nope")
	if !queue.IsSessionNotFound(err) {
		t.Errorf("Session(nope) error = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestPosition_ContiguousInQueueOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insertSessions(t, s,
		createTestSession("s-001", "gala", "a", queue.StatusActive, testEpoch),
		createTestSession("s-004", "gala", "d", queue.StatusWaiting, testEpoch.Add(2*time.Second)),
		createTestSession("s-003", "gala", "c", queue.StatusWaiting, testEpoch.Add(time.Second)),
		createTestSession("s-002", "gala", "b", queue.StatusWaiting, testEpoch.Add(time.Second)),
		createTestSession("s-005", "other", "e", queue.StatusWaiting, testEpoch),
	)

	want := map[string]int{"s-002": 1, "s-003": 2, "s-004": 3, "s-005": 1}
	for id, pos := range want {
		got, ok, err := s.Position(ctx, id)
		if err != nil {
			t.Fatalf("Position(%s) failed: %v", id, err)
		}
		if !ok || got != pos {
			t.Errorf("Position(%s) = %d, %v; want %d", id, got, ok, pos)
		}
	}

	if _, ok, err := s.Position(ctx, "s-001"); err != nil || ok {
		t.Errorf("Position(active) = ok %v, err %v; want no position", ok, err)
	}
}

func TestPosition_SkipsTerminalSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insertSessions(t, s,
		createTestSession("s-001", "gala", "a", queue.StatusWaiting, testEpoch),
		createTestSession("s-002", "gala", "b", queue.StatusWaiting, testEpoch.Add(time.Second)),
	)
	err := s.Atomic(ctx, func(tx queue.Tx) error {
		return tx.Transition(ctx, "s-001", queue.StatusWaiting, queue.StatusExpired, testEpoch.Add(time.Hour))
	})
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}

	pos, ok, err := s.Position(ctx, "s-002")
	if err != nil || !ok || pos != 1 {
		t.Errorf("Position(s-002) = %d, %v, %v; want 1", pos, ok, err)
	}
	if _, ok, _ := s.Position(ctx, "s-001"); ok {
		t.Error("expired session reported a position")
	}
}

func TestPosition_NotFound(t *testing.T) {
	s := createTestStore(t)
	if _, _, err := s.Position(context.Background(), "nope"); !queue.IsSessionNotFound(err) {
		t.Errorf("Position(nope) error = %v, want SESSION_NOT_FOUND", err)
	}
}

func TestCounts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insertSessions(t, s,
		createTestSession("s-001", "gala", "a", queue.StatusActive, testEpoch),
		createTestSession("s-002", "gala", "b", queue.StatusWaiting, testEpoch),
		createTestSession("s-003", "gala", "c", queue.StatusWaiting, testEpoch),
	)

	counts, err := s.Counts(ctx, "gala")
	if err != nil {
		t.Fatalf("Counts() failed: %v", err)
	}
	if counts[queue.StatusActive] != 1 || counts[queue.StatusWaiting] != 2 || counts[queue.StatusExpired] != 0 {
		t.Errorf("Counts() = %v", counts)
	}

	empty, err := s.Counts(ctx, "none")
	if err != nil {
		t.Fatalf("Counts(none) failed: %v", err)
	}
	if len(empty) != 4 {
		t.Errorf("Counts(none) = %v, want all four statuses at zero", empty)
	}
}

func TestOpenEvents(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insertSessions(t, s,
		createTestSession("s-001", "zeta", "a", queue.StatusWaiting, testEpoch),
		createTestSession("s-002", "alpha", "b", queue.StatusActive, testEpoch),
		createTestSession("s-003", "done", "c", queue.StatusActive, testEpoch),
	)
	err := s.Atomic(ctx, func(tx queue.Tx) error {
		return tx.Transition(ctx, "s-003", queue.StatusActive, queue.StatusCompleted, testEpoch)
	})
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	events, err := s.OpenEvents(ctx)
	if err != nil {
		t.Fatalf("OpenEvents() failed: %v", err)
	}
	if fmt.Sprint(events) != "[alpha zeta]" {
		t.Errorf("OpenEvents() = %v, want [alpha zeta]", events)
	}
}

func TestStale_StrictCutoff(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	now := testEpoch.Add(time.Hour)
	cutoff := now.Add(-30 * time.Minute)

	insertSessions(t, s,
		createTestSession("s-001", "gala", "old", queue.StatusActive, now.Add(-31*time.Minute)),
		createTestSession("s-002", "gala", "edge", queue.StatusWaiting, cutoff),
		createTestSession("s-003", "gala", "fresh", queue.StatusWaiting, now.Add(-29*time.Minute)),
		createTestSession("s-004", "gala", "old-waiting", queue.StatusWaiting, now.Add(-45*time.Minute)),
	)

	stale, err := s.Stale(ctx, "gala", cutoff)
	if err != nil {
		t.Fatalf("Stale() failed: %v", err)
	}
	var ids []string
	for _, sess := range stale {
		ids = append(ids, sess.ID)
	}
	if fmt.Sprint(ids) != "[s-004 s-001]" {
		t.Errorf("Stale() = %v, want [s-004 s-001]", ids)
	}
}

func TestListSessions_QueueOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	insertSessions(t, s,
		createTestSession("s-002", "gala", "b", queue.StatusWaiting, testEpoch.Add(time.Second)),
		createTestSession("s-001", "gala", "a", queue.StatusActive, testEpoch.Add(time.Second)),
		createTestSession("s-003", "gala", "c", queue.StatusWaiting, testEpoch),
	)

	sessions, err := s.ListSessions(ctx, "gala")
	if err != nil {
		t.Fatalf("ListSessions() failed: %v", err)
	}
	var ids []string
	for _, sess := range sessions {
		ids = append(ids, sess.ID)
	}
	if fmt.Sprint(ids) != "[s-003 s-001 s-002]" {
		t.Errorf("ListSessions() = %v", ids)
	}
}
