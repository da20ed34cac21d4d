package gesture

import (
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// SlotController turns a press and release on an empty day cell into a
// draft for a new all-day event.
type SlotController struct {
	pressed *time.Time
}

// PointerDown records a press on day. Presses that land on an occurrence
// never start a slot selection.
func (c *SlotController) PointerDown(day time.Time, onOccurrence bool) {
	c.pressed = nil
	if onOccurrence {
		return
	}
	c.pressed = &day
}

// PointerUp completes the selection when released on the pressed day.
func (c *SlotController) PointerUp(day time.Time) (model.EventDraft, bool) {
	pressed := c.pressed
	c.pressed = nil
	if pressed == nil || !sameDay(*pressed, day) {
		return model.EventDraft{}, false
	}

	y, m, d := pressed.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, pressed.Location())
	return model.EventDraft{
		Start:    start,
		End:      start,
		AllDay:   true,
		Priority: model.PriorityMedium,
	}, true
}

// Pending reports whether a press is waiting for its release.
func (c *SlotController) Pending() bool {
	return c.pressed != nil
}
