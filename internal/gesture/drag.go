package gesture

import (
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// DragState is the transient state of one move gesture.
type DragState struct {
	Occurrence model.Occurrence
	OriginDay  time.Time
	// OverDay is the cell currently under the pointer, for drop highlighting.
	OverDay time.Time
}

// DragController moves a whole occurrence to another day.
type DragController struct {
	bus      *Bus
	hit      HitTester
	onIntent func(MoveIntent)

	state   *DragState
	capture *Capture
}

// NewDragController wires a drag controller to the global pointer bus.
// onIntent receives intents produced by bus-driven releases; direct Drop
// calls return their intent instead.
func NewDragController(bus *Bus, hit HitTester, onIntent func(MoveIntent)) *DragController {
	return &DragController{bus: bus, hit: hit, onIntent: onIntent}
}

// Start begins a drag of o from originDay. It reports false, and keeps no
// state, when o is not draggable.
func (c *DragController) Start(o model.Occurrence, originDay time.Time) bool {
	c.end()
	if !o.Draggable {
		return false
	}
	c.state = &DragState{Occurrence: o, OriginDay: originDay, OverDay: originDay}
	c.capture = c.bus.Acquire(Listener{Move: c.pointerMove, Release: c.pointerRelease})
	return true
}

// DragOver records the day cell under the pointer.
func (c *DragController) DragOver(day time.Time) {
	if c.state != nil {
		c.state.OverDay = day
	}
}

// Drop finishes the gesture on targetDay. Start and end shift by the same
// whole-day delta, so clock time and duration are preserved.
//
// A drop back on the origin day deliberately ends the gesture without an
// intent instead of emitting a zero-day MoveIntent; there is nothing to
// persist and handlers never see a no-op move.
func (c *DragController) Drop(targetDay time.Time) (MoveIntent, bool) {
	if c.state == nil {
		return MoveIntent{}, false
	}
	defer c.end()

	o := c.state.Occurrence
	delta := DaysBetween(c.state.OriginDay, targetDay)
	if delta == 0 {
		return MoveIntent{}, false
	}
	return MoveIntent{
		ID:       o.SourceID,
		NewStart: o.Start.AddDate(0, 0, delta),
		NewEnd:   o.End.AddDate(0, 0, delta),
	}, true
}

// Cancel abandons the gesture without an intent.
func (c *DragController) Cancel() {
	c.end()
}

// State returns the live drag state, if any.
func (c *DragController) State() (DragState, bool) {
	if c.state == nil {
		return DragState{}, false
	}
	return *c.state, true
}

func (c *DragController) pointerMove(p grid.Point) {
	if day, ok := c.hit.DayAt(p); ok {
		c.DragOver(day)
	}
}

func (c *DragController) pointerRelease(p grid.Point) {
	day, ok := c.hit.DayAt(p)
	if !ok {
		c.Cancel()
		return
	}
	if intent, ok := c.Drop(day); ok && c.onIntent != nil {
		c.onIntent(intent)
	}
}

func (c *DragController) end() {
	c.capture.Release()
	c.capture = nil
	c.state = nil
}
