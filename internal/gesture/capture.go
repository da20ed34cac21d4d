// Package gesture implements the pointer state machines of the month grid:
// slot selection, drag-to-move, edge resize and the context menu.
//
// Controllers are not safe for concurrent use; the owning view serializes
// calls into them.
package gesture

import (
	"sort"
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
)

// HitTester resolves a pointer position to the day cell under it.
type HitTester interface {
	DayAt(p grid.Point) (time.Time, bool)
}

// Listener receives global pointer events while a gesture holds a capture.
type Listener struct {
	Move    func(p grid.Point)
	Release func(p grid.Point)
}

// Bus fans global pointer movement and release events out to the gestures
// currently holding a capture.
type Bus struct {
	next int
	subs map[int]Listener
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]Listener)}
}

// Capture is a held subscription on a Bus. Release is idempotent.
type Capture struct {
	bus *Bus
	id  int
}

// Acquire subscribes l until the returned capture is released.
func (b *Bus) Acquire(l Listener) *Capture {
	b.next++
	b.subs[b.next] = l
	return &Capture{bus: b, id: b.next}
}

// Release detaches the listener.
func (c *Capture) Release() {
	if c == nil || c.bus == nil {
		return
	}
	delete(c.bus.subs, c.id)
	c.bus = nil
}

// Active returns the number of live captures.
func (b *Bus) Active() int {
	return len(b.subs)
}

// Move dispatches a pointer move to every captured listener.
func (b *Bus) Move(p grid.Point) {
	for _, l := range b.snapshot() {
		if l.Move != nil {
			l.Move(p)
		}
	}
}

// Release dispatches a pointer release. Listeners typically release their
// own capture from inside the callback.
func (b *Bus) Release(p grid.Point) {
	for _, l := range b.snapshot() {
		if l.Release != nil {
			l.Release(p)
		}
	}
}

// snapshot copies the listeners so callbacks may release captures while
// the bus is dispatching.
func (b *Bus) snapshot() []Listener {
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.subs[id])
	}
	return out
}
