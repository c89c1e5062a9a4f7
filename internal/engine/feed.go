package engine

import (
	"context"
	"sync"

	"github.com/roach88/admit/internal/queue"
)

// Feed is a thread-safe FIFO of committed session transitions.
//
// The engine publishes to the feed after each unit commits; consumers read
// with Next. The feed decouples the admission core from how participants
// learn about changes: today serve drains it into the log and clients poll,
// a push transport can consume the same feed later.
//
// The feed is unbounded so that publishing never blocks an admission or
// promotion. Engines without a feed publish nothing.
type Feed struct {
	mu     sync.Mutex
	items  []queue.Transition
	closed bool
	signal chan struct{} // Signals availability (buffered, size 1)
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		items:  make([]queue.Transition, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Publish appends a transition.
// Returns false if the feed is closed.
func (f *Feed) Publish(t queue.Transition) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}

	f.items = append(f.items, t)

	// Non-blocking - buffer of 1 coalesces multiple signals
	select {
	case f.signal <- struct{}{}:
	default:
	}

	return true
}

// TryNext removes and returns the oldest transition without blocking.
func (f *Feed) TryNext() (queue.Transition, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == 0 {
		return queue.Transition{}, false
	}

	t := f.items[0]
	if len(f.items) == 1 {
		f.items = f.items[:0]
	} else {
		f.items = f.items[1:]
	}
	return t, true
}

// Next blocks until a transition is available, the feed is closed and
// drained, or ctx is done. A closed, drained feed returns ErrFeedClosed.
func (f *Feed) Next(ctx context.Context) (queue.Transition, error) {
	for {
		if t, ok := f.TryNext(); ok {
			return t, nil
		}

		f.mu.Lock()
		done := f.closed && len(f.items) == 0
		f.mu.Unlock()
		if done {
			return queue.Transition{}, ErrFeedClosed
		}

		select {
		case <-ctx.Done():
			return queue.Transition{}, ctx.Err()
		case <-f.signal:
		}
	}
}

// Len returns the number of pending transitions.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Close stops accepting transitions and wakes blocked readers.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true
	close(f.signal)
}
