package gesture

import (
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// ResizeState is the transient state of one edge-resize gesture.
type ResizeState struct {
	Occurrence  model.Occurrence
	AnchorStart time.Time
	OriginalEnd time.Time
	// Cursor is the last pointer position, used only for feedback.
	Cursor grid.Point
}

// ResizeController changes an occurrence's end by dragging its edge handle
// onto another day cell.
type ResizeController struct {
	bus      *Bus
	hit      HitTester
	onIntent func(ResizeIntent)

	state   *ResizeState
	capture *Capture
}

// NewResizeController wires a resize controller to the global pointer bus.
func NewResizeController(bus *Bus, hit HitTester, onIntent func(ResizeIntent)) *ResizeController {
	return &ResizeController{bus: bus, hit: hit, onIntent: onIntent}
}

// PointerDown grabs the edge handle of o. Non-resizable occurrences are
// ignored.
func (c *ResizeController) PointerDown(o model.Occurrence) bool {
	c.end()
	if !o.Resizable {
		return false
	}
	c.state = &ResizeState{Occurrence: o, AnchorStart: o.Start, OriginalEnd: o.End}
	c.capture = c.bus.Acquire(Listener{Move: c.PointerMove, Release: c.release})
	return true
}

// PointerMove tracks the cursor. Nothing is mutated until pointer-up.
func (c *ResizeController) PointerMove(p grid.Point) {
	if c.state != nil {
		c.state.Cursor = p
	}
}

// PointerUp ends the gesture. The cell under p sets the new end to that
// day's 23:59:59.999; ends before the unchanged start are rejected, as are
// releases outside the grid.
func (c *ResizeController) PointerUp(p grid.Point) (ResizeIntent, bool) {
	if c.state == nil {
		return ResizeIntent{}, false
	}
	defer c.end()

	day, ok := c.hit.DayAt(p)
	if !ok {
		return ResizeIntent{}, false
	}

	start := c.state.AnchorStart
	candidate := EndOfDay(day, start.Location())
	if candidate.Before(start) {
		return ResizeIntent{}, false
	}
	return ResizeIntent{ID: c.state.Occurrence.SourceID, NewStart: start, NewEnd: candidate}, true
}

// Cancel abandons the gesture without an intent.
func (c *ResizeController) Cancel() {
	c.end()
}

// State returns the live resize state, if any.
func (c *ResizeController) State() (ResizeState, bool) {
	if c.state == nil {
		return ResizeState{}, false
	}
	return *c.state, true
}

func (c *ResizeController) release(p grid.Point) {
	if intent, ok := c.PointerUp(p); ok && c.onIntent != nil {
		c.onIntent(intent)
	}
}

func (c *ResizeController) end() {
	c.capture.Release()
	c.capture = nil
	c.state = nil
}
