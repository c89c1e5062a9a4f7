package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/roach88/admit/internal/config"
	"github.com/roach88/admit/internal/engine"
	"github.com/roach88/admit/internal/queue"
	"github.com/roach88/admit/internal/store"
	"github.com/roach88/admit/internal/testutil"
)

// Start is the manual clock's initial time in every scenario.
var Start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness is the scenario execution state.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	cfg    *config.Config
	clock  *testutil.ManualClock
	feed   *engine.Feed

	// names maps session IDs to scenario names and back.
	names map[string]string
	ids   map[string]string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// A step whose outcome differs from its expect clause fails the result
// and execution continues with the next step.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	cfg, err := eventConfig(scenario.Events)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store: st,
		cfg:   cfg,
		clock: testutil.NewManualClock(Start),
		feed:  engine.NewFeed(),
		names: map[string]string{},
		ids:   map[string]string{},
	}
	h.engine = engine.New(st, cfg,
		engine.WithClock(h.clock),
		engine.WithIDGenerator(testutil.NewSequentialIDs("")),
		engine.WithFeed(h.feed),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	)

	ctx := context.Background()
	result := NewResult()
	result.Snapshot.Scenario = scenario.Name
	result.Snapshot.Transitions = []TransitionRecord{}

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
		h.drainFeed(result)
	}

	for i, a := range scenario.Assertions {
		if err := h.evaluate(ctx, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d] (%s): %v", i, a.Type, err))
		}
	}

	sessions, err := h.sessions(ctx)
	if err != nil {
		return nil, err
	}
	result.Snapshot.Sessions = sessions

	return result, nil
}

func eventConfig(events map[string]EventSpec) (*config.Config, error) {
	cfg := config.Default()
	for id, ev := range events {
		timeout := config.DefaultTimeout
		if ev.Timeout != "" {
			d, err := time.ParseDuration(ev.Timeout)
			if err != nil {
				return nil, fmt.Errorf("events[%s]: %w", id, err)
			}
			timeout = d
		}
		cfg.Events[id] = config.Event{ID: id, Capacity: ev.Capacity, Timeout: timeout}
	}
	return cfg, nil
}

// executeStep runs one step. Unexpected outcomes are recorded on result;
// only harness failures are returned.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	fail := func(format string, args ...any) {
		result.AddError(fmt.Sprintf("steps[%d]: ", i) + fmt.Sprintf(format, args...))
	}
	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}

	switch {
	case step.Enter != nil:
		ticket, err := h.engine.Enter(ctx, step.Enter.Event, step.Enter.Token)
		if !checkError(fail, expect, err) {
			return nil
		}
		name := step.Enter.As
		if name == "" {
			name = step.Enter.Token
		}
		h.name(ticket.Session.ID, name)

		checkStatus(fail, expect, ticket.Session.Status)
		if expect.Position != nil && *expect.Position != ticket.Position {
			fail("expected position %d, got %d", *expect.Position, ticket.Position)
		}
		if expect.Reentered != nil && *expect.Reentered != ticket.Reentered {
			fail("expected reentered=%v, got %v", *expect.Reentered, ticket.Reentered)
		}

	case step.Complete != "" || step.Cancel != "":
		name, outcome := step.Complete, queue.StatusCompleted
		if step.Cancel != "" {
			name, outcome = step.Cancel, queue.StatusExpired
		}
		res, err := h.engine.Exit(ctx, h.id(name), outcome)
		if !checkError(fail, expect, err) {
			return nil
		}
		checkStatus(fail, expect, res.Session.Status)

		got := "none"
		if res.Promoted != nil {
			got = h.label(res.Promoted.ID)
		}
		if expect.Promoted != "" && expect.Promoted != got {
			fail("expected promoted %s, got %s", expect.Promoted, got)
		}

	case step.Advance != "":
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		h.clock.Advance(d)

	case step.Reap:
		report, err := h.engine.Reap(ctx, h.clock.Now())
		if !checkError(fail, expect, err) {
			return nil
		}
		if expect.Expired != nil && *expect.Expired != report.Expired {
			fail("expected %d expired, got %d", *expect.Expired, report.Expired)
		}
	}

	return nil
}

// checkError compares err to the expected error code and reports whether
// the step succeeded.
func checkError(fail func(string, ...any), expect *Expect, err error) bool {
	switch {
	case err == nil && expect.Error != "":
		fail("expected error %s, got success", expect.Error)
	case err != nil && expect.Error == "":
		fail("unexpected error: %v", err)
	case err != nil && string(queue.CodeOf(err)) != expect.Error:
		fail("expected error %s, got %v", expect.Error, err)
	}
	return err == nil
}

func checkStatus(fail func(string, ...any), expect *Expect, got queue.Status) {
	if expect.Status != "" && expect.Status != string(got) {
		fail("expected status %s, got %s", expect.Status, got)
	}
}

func (h *Harness) name(id, name string) {
	if _, ok := h.names[id]; ok {
		return
	}
	h.names[id] = name
	h.ids[name] = id
}

// id resolves a scenario name; unknown names are used as raw session IDs.
func (h *Harness) id(name string) string {
	if id, ok := h.ids[name]; ok {
		return id
	}
	return name
}

// label is the scenario name of a session, or its ID if unnamed.
func (h *Harness) label(id string) string {
	if name, ok := h.names[id]; ok {
		return name
	}
	return id
}

func (h *Harness) drainFeed(result *Result) {
	for {
		t, ok := h.feed.TryNext()
		if !ok {
			return
		}
		result.Snapshot.Transitions = append(result.Snapshot.Transitions, TransitionRecord{
			Session: h.label(t.SessionID),
			From:    string(t.From),
			To:      string(t.To),
			At:      t.At.Sub(Start).String(),
		})
	}
}

// sessions lists every session, events in ID order and sessions in queue
// order within each event.
func (h *Harness) sessions(ctx context.Context) ([]SessionRecord, error) {
	events := h.cfg.EventIDs()
	sort.Strings(events)

	records := []SessionRecord{}
	for _, eventID := range events {
		sessions, err := h.store.ListSessions(ctx, eventID)
		if err != nil {
			return nil, err
		}
		for _, s := range sessions {
			pos, _, err := h.store.Position(ctx, s.ID)
			if err != nil {
				return nil, err
			}
			records = append(records, SessionRecord{
				Session:  h.label(s.ID),
				ID:       s.ID,
				Event:    s.EventID,
				Status:   string(s.Status),
				Position: pos,
			})
		}
	}
	return records, nil
}
