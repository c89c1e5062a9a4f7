package engine

import (
	"log/slog"
	"time"

	"github.com/roach88/admit/internal/config"
	"github.com/roach88/admit/internal/queue"
)

// EventCatalog resolves an event's admission settings.
// Implemented by *config.Config; read-only to the engine.
type EventCatalog interface {
	Event(id string) (config.Event, bool)
}

// Engine is the admission queue: admission, promotion, positions and reaping
// over a queue.Store.
//
// Thread-safety: all methods are safe for concurrent use. Mutations for the
// same event are serialized around their atomic unit; mutations for different
// events proceed independently; reads take no engine lock.
type Engine struct {
	store  queue.Store
	events EventCatalog
	clock  Clock
	ids    queue.IDGenerator
	feed   *Feed
	locks  *eventLocks
	logger *slog.Logger
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithClock sets the time source. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator sets the session ID source. Default: queue.UUIDv7Generator.
func WithIDGenerator(g queue.IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithFeed publishes every committed transition to f.
func WithFeed(f *Feed) Option {
	return func(e *Engine) {
		e.feed = f
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an Engine over the given store and event catalog.
func New(s queue.Store, events EventCatalog, opts ...Option) *Engine {
	e := &Engine{
		store:  s,
		events: events,
		clock:  SystemClock{},
		ids:    queue.UUIDv7Generator{},
		locks:  newEventLocks(),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Ticket is what a participant learns about its session.
type Ticket struct {
	Session queue.Session

	// Position is the 1-based rank while waiting, 0 otherwise.
	Position int

	// Reentered is true when Enter returned an existing open session.
	Reentered bool
}

// settings returns the configured capacity and timeout for an event.
// Events no longer in the catalog keep default settings so that their
// remaining sessions can still exit and be reaped.
func (e *Engine) settings(eventID string) config.Event {
	if ev, ok := e.events.Event(eventID); ok {
		return ev
	}
	return config.Event{ID: eventID, Capacity: config.DefaultCapacity, Timeout: config.DefaultTimeout}
}

// publish sends committed transitions to the feed, if any.
// Callers hold the event's lock, so each event's transitions reach the feed
// in commit order. Logging them is left to feed consumers.
func (e *Engine) publish(ts ...queue.Transition) {
	if e.feed == nil {
		return
	}
	for _, t := range ts {
		e.feed.Publish(t)
	}
}

// Now reads the engine's clock.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}
