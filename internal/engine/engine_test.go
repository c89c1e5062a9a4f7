package engine

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/admit/internal/config"
	"github.com/roach88/admit/internal/queue"
	"github.com/roach88/admit/internal/store"
	"github.com/roach88/admit/internal/testutil"
)

var epoch = time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

type fixture struct {
	eng   *Engine
	store *store.Store
	clock *testutil.ManualClock
	feed  *Feed
	ids   *testutil.SequentialIDs
	cfg   *config.Config
}

// newFixture builds an engine over a fresh SQLite store with a manual clock
// at epoch, sequential session IDs, and a feed.
func newFixture(t *testing.T, events ...config.Event) *fixture {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "engine.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return newFixtureOn(t, st, st, events...)
}

// newFixtureOn is newFixture with the engine running against qs, which may
// wrap st.
func newFixtureOn(t *testing.T, st *store.Store, qs queue.Store, events ...config.Event) *fixture {
	t.Helper()

	cfg := config.Default()
	for _, ev := range events {
		cfg.Events[ev.ID] = ev
	}

	f := &fixture{
		store: st,
		clock: testutil.NewManualClock(epoch),
		feed:  NewFeed(),
		ids:   testutil.NewSequentialIDs(""),
		cfg:   cfg,
	}
	f.eng = New(qs, cfg,
		WithClock(f.clock),
		WithIDGenerator(f.ids),
		WithFeed(f.feed),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return f
}

func event(id string, capacity int) config.Event {
	return config.Event{ID: id, Capacity: capacity, Timeout: 30 * time.Minute}
}

// enter admits token and advances the clock by one second afterwards so
// consecutive entries get distinct CreatedAt values.
func (f *fixture) enter(t *testing.T, eventID, token string) Ticket {
	t.Helper()
	ticket, err := f.eng.Enter(context.Background(), eventID, token)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return ticket
}

func (f *fixture) status(t *testing.T, sessionID string) queue.Status {
	t.Helper()
	sess, err := f.store.Session(context.Background(), sessionID)
	require.NoError(t, err)
	return sess.Status
}

func (f *fixture) position(t *testing.T, sessionID string) int {
	t.Helper()
	pos, ok, err := f.eng.Position(context.Background(), sessionID)
	require.NoError(t, err)
	if !ok {
		return 0
	}
	return pos
}

func (f *fixture) stats(t *testing.T, eventID string) EventStats {
	t.Helper()
	st, err := f.eng.Stats(context.Background(), eventID)
	require.NoError(t, err)
	return st
}

// drain returns every transition currently on the feed.
func (f *fixture) drain() []queue.Transition {
	var out []queue.Transition
	for {
		tr, ok := f.feed.TryNext()
		if !ok {
			return out
		}
		out = append(out, tr)
	}
}

// flakyStore injects errors into the next Atomic calls.
type flakyStore struct {
	queue.Store

	mu       sync.Mutex
	failures []error
	calls    int
}

func (f *flakyStore) failNext(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, errs...)
}

func (f *flakyStore) Atomic(ctx context.Context, fn func(queue.Tx) error) error {
	f.mu.Lock()
	f.calls++
	var err error
	if len(f.failures) > 0 {
		err, f.failures = f.failures[0], f.failures[1:]
	}
	f.mu.Unlock()

	if err != nil {
		return err
	}
	return f.Store.Atomic(ctx, fn)
}

func (f *flakyStore) atomicCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestNew_Defaults(t *testing.T) {
	e := New(nil, config.Default())

	assert.IsType(t, SystemClock{}, e.clock)
	assert.IsType(t, queue.UUIDv7Generator{}, e.ids)
	assert.Nil(t, e.feed)
	assert.NotNil(t, e.logger)
	assert.NotNil(t, e.locks)
}

func TestSettings_FallsBackToDefaults(t *testing.T) {
	f := newFixture(t, event("gala", 3))

	assert.Equal(t, 3, f.eng.settings("gala").Capacity)

	removed := f.eng.settings("retired-event")
	assert.Equal(t, config.DefaultCapacity, removed.Capacity)
	assert.Equal(t, config.DefaultTimeout, removed.Timeout)
}

func TestSystemClock_UTC(t *testing.T) {
	assert.Equal(t, time.UTC, SystemClock{}.Now().Location())
}

// Admissions and exits log below Info; serve reports them from the feed.
func TestEngine_TransitionsLogBelowInfo(t *testing.T) {
	f := newFixture(t, event("gala", 1))
	ctx := context.Background()

	var buf bytes.Buffer
	f.eng = New(f.store, f.cfg,
		WithClock(f.clock),
		WithIDGenerator(f.ids),
		WithFeed(f.feed),
		WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))),
	)

	first := f.enter(t, "gala", "alice")
	f.enter(t, "gala", "bob")
	_, err := f.eng.Complete(ctx, first.Session.ID)
	require.NoError(t, err)

	assert.Len(t, f.drain(), 4)
	assert.Empty(t, buf.String())
}
