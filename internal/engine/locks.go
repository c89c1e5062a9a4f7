package engine

import "sync"

// eventLocks is a keyed mutex: one lock per event ID.
//
// Entries are reference counted and removed once no goroutine holds or waits
// on them, so the map stays proportional to the number of events with calls
// in flight rather than every event ever seen.
type eventLocks struct {
	mu      sync.Mutex
	byEvent map[string]*eventLock
}

type eventLock struct {
	mu   sync.Mutex
	refs int // holders plus waiters; guarded by eventLocks.mu
}

func newEventLocks() *eventLocks {
	return &eventLocks{byEvent: make(map[string]*eventLock)}
}

// lock blocks until the caller holds eventID's lock and returns the function
// that releases it. The release function must be called exactly once.
func (l *eventLocks) lock(eventID string) (unlock func()) {
	l.mu.Lock()
	el, ok := l.byEvent[eventID]
	if !ok {
		el = &eventLock{}
		l.byEvent[eventID] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()

	return func() {
		el.mu.Unlock()

		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.byEvent, eventID)
		}
		l.mu.Unlock()
	}
}

// size returns the number of live lock entries.
func (l *eventLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byEvent)
}
