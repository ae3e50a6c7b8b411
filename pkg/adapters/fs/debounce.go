package fs

import (
	"sync"
	"time"

	"github.com/aretw0/flow/pkg/core"
)

// debouncer coalesces bursts of events for the same document id. Only the
// last event of a burst is delivered, once the id has been quiet for delay.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	wg      sync.WaitGroup
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(event core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if prev, ok := d.timers[event.ID]; ok && prev.Stop() {
		d.wg.Done()
	}

	d.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		if d.timers[event.ID] == timer {
			delete(d.timers, event.ID)
		}
		d.mu.Unlock()

		fn(event)
	})
	d.timers[event.ID] = timer
}

// stopAndWait drops pending events and waits up to timeout for callbacks
// already running. It reports whether they all finished.
func (d *debouncer) stopAndWait(timeout time.Duration) bool {
	d.mu.Lock()
	d.stopped = true
	for id, timer := range d.timers {
		if timer.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
