// Package debounce coalesces bursts of input into a single delayed commit.
//
// A Debouncer hands out Tickets. Only the most recently scheduled ticket can
// commit; scheduling again or cancelling supersedes every earlier ticket, so a
// late timer for an old ticket is simply ignored. This lets event loops that
// cannot stop an already-queued tick (bubbletea's tea.Tick) still guarantee
// that at most one commit fires per burst.
package debounce

import (
	"sync"
	"time"
)

// Ticket identifies one scheduled commit.
type Ticket struct {
	epoch uint64
}

// Debouncer holds the latest pending value.
type Debouncer[T any] struct {
	mu      sync.Mutex
	window  time.Duration
	epoch   uint64
	pending bool
	value   T
}

// New creates a debouncer with the given quiet window.
func New[T any](window time.Duration) *Debouncer[T] {
	if window < 0 {
		window = 0
	}
	return &Debouncer[T]{window: window}
}

// Window returns the quiet period callers should wait before committing.
func (d *Debouncer[T]) Window() time.Duration {
	return d.window
}

// Schedule records value as the pending commit and supersedes any earlier
// ticket.
func (d *Debouncer[T]) Schedule(value T) Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epoch++
	d.pending = true
	d.value = value
	return Ticket{epoch: d.epoch}
}

// Commit returns the pending value if ticket is still the latest one. A
// ticket commits at most once.
func (d *Debouncer[T]) Commit(ticket Ticket) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	if !d.pending || ticket.epoch != d.epoch {
		return zero, false
	}
	d.pending = false
	value := d.value
	d.value = zero
	return value, true
}

// Cancel drops the pending value; outstanding tickets become stale.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epoch++
	d.pending = false
	var zero T
	d.value = zero
}

// Pending reports whether a commit is waiting.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
