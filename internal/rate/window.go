// Package rate implements the relayer-side rolling-window counters the
// venue enforces on external match traffic. The client deliberately keeps
// no replica of these (settlement state is unobservable client-side); they
// are used by the sandbox relayer to reproduce the server's behavior.
package rate

import (
	"sync"
	"time"
)

// Window is a rolling-window counter: at most limit events inside any
// trailing interval. Events can be credited back, which is how the venue's
// unsettled-bundle window behaves when a bundle is observed settled
// on-chain.
type Window struct {
	mu       sync.Mutex
	limit    int
	interval time.Duration
	stamps   []time.Time
}

// NewWindow creates a counter allowing limit events per trailing interval.
func NewWindow(limit int, interval time.Duration) *Window {
	return &Window{
		limit:    limit,
		interval: interval,
	}
}

// Allow records an event at now if the window has room, reporting whether
// it was admitted.
func (w *Window) Allow(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.evict(now)
	if len(w.stamps) >= w.limit {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// Credit removes the oldest recorded event, returning allowance to the
// window. No-op when the window is empty.
func (w *Window) Credit() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.stamps) > 0 {
		w.stamps = w.stamps[1:]
	}
}

// Used returns the number of events currently inside the window.
func (w *Window) Used(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(now)
	return len(w.stamps)
}

// evict drops stamps older than the trailing interval. Caller holds the lock.
func (w *Window) evict(now time.Time) {
	cutoff := now.Add(-w.interval)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = w.stamps[i:]
	}
}
