package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventLocks_SerializesSameEvent(t *testing.T) {
	l := newEventLocks()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock("gala")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.size(), "entries are released once unused")
}

func TestEventLocks_DifferentEventsIndependent(t *testing.T) {
	l := newEventLocks()

	unlockA := l.lock("gala")
	defer unlockA()

	acquired := make(chan struct{})
	go func() {
		unlock := l.lock("matinee")
		unlock()
		close(acquired)
	}()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock on another event blocked")
	}
	assert.Equal(t, 1, l.size())
}
