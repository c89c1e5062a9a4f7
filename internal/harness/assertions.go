package harness

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/admit/internal/queue"
)

// evaluate checks one assertion against the final state.
func (h *Harness) evaluate(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertStatus:
		return h.assertStatus(ctx, a)
	case AssertPosition:
		return h.assertPosition(ctx, a)
	case AssertCounts:
		return h.assertCounts(ctx, a)
	case AssertOrder:
		return h.assertOrder(ctx, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (h *Harness) assertStatus(ctx context.Context, a Assertion) error {
	s, err := h.store.Session(ctx, h.id(a.Session))
	if err != nil {
		return err
	}
	if string(s.Status) != a.Status {
		return fmt.Errorf("session %s: expected status %s, got %s", a.Session, a.Status, s.Status)
	}
	return nil
}

func (h *Harness) assertPosition(ctx context.Context, a Assertion) error {
	pos, _, err := h.store.Position(ctx, h.id(a.Session))
	if err != nil {
		return err
	}
	if pos != a.Position {
		return fmt.Errorf("session %s: expected position %d, got %d", a.Session, a.Position, pos)
	}
	return nil
}

func (h *Harness) assertCounts(ctx context.Context, a Assertion) error {
	counts, err := h.store.Counts(ctx, a.Event)
	if err != nil {
		return err
	}
	for _, status := range []queue.Status{queue.StatusActive, queue.StatusWaiting, queue.StatusCompleted, queue.StatusExpired} {
		want := a.Counts[string(status)]
		if got := counts[status]; got != want {
			return fmt.Errorf("event %s: expected %d %s, got %d", a.Event, want, status, got)
		}
	}
	return nil
}

func (h *Harness) assertOrder(ctx context.Context, a Assertion) error {
	sessions, err := h.store.ListSessions(ctx, a.Event)
	if err != nil {
		return err
	}

	got := []string{}
	for _, s := range sessions {
		if s.Status == queue.StatusWaiting {
			got = append(got, h.label(s.ID))
		}
	}
	want := a.Sessions
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("event %s: expected waiting order %v, got %v", a.Event, want, got)
	}
	return nil
}
