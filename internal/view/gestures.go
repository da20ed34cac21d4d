package view

import (
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/gesture"
	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// SetHandlers replaces the shell callbacks.
func (v *View) SetHandlers(h Handlers) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.handlers = h
}

// PressCell handles a pointer-down on an empty part of a day cell.
func (v *View) PressCell(day time.Time) {
	v.do(func() {
		if v.gestureActiveLocked() {
			return
		}
		v.slot.PointerDown(day, false)
	})
}

// ReleaseCell completes a slot selection and hands the draft to
// OnSlotSelect. It reports whether a draft was produced.
func (v *View) ReleaseCell(day time.Time) bool {
	var ok bool
	v.do(func() {
		var draft model.EventDraft
		draft, ok = v.slot.PointerUp(day)
		if ok && v.handlers.OnSlotSelect != nil {
			h := v.handlers.OnSlotSelect
			v.queue(func() { h(draft) })
		}
	})
	return ok
}

// SelectOccurrence handles a press on an occurrence chip.
func (v *View) SelectOccurrence(id string) bool {
	var ok bool
	v.do(func() {
		var o model.Occurrence
		o, ok = v.findLocked(id)
		// A press on an occurrence never starts a slot selection.
		v.slot.PointerDown(time.Time{}, true)
		if !ok {
			return
		}
		v.selected = id
		if h := v.handlers.OnOccurrenceSelect; h != nil {
			v.queue(func() { h(o) })
		}
	})
	return ok
}

// ClearSelection drops the selected occurrence.
func (v *View) ClearSelection() {
	v.do(func() { v.selected = "" })
}

// BeginDrag starts moving occurrence id from originDay. It reports false
// for unknown or non-draggable occurrences and while another gesture holds
// the pointer.
func (v *View) BeginDrag(id string, originDay time.Time) bool {
	var ok bool
	v.do(func() {
		o, found := v.findLocked(id)
		if !found || v.gestureActiveLocked() {
			return
		}
		v.menu.Dismiss()
		ok = v.drag.Start(o, originDay)
	})
	return ok
}

// DragOver records the day under a dragged occurrence.
func (v *View) DragOver(day time.Time) {
	v.do(func() { v.drag.DragOver(day) })
}

// Drop ends a drag on targetDay and reports whether a move was emitted.
func (v *View) Drop(targetDay time.Time) bool {
	var ok bool
	v.do(func() {
		var intent gesture.MoveIntent
		if intent, ok = v.drag.Drop(targetDay); ok {
			v.emitMove(intent)
		}
	})
	return ok
}

// BeginResize grabs the end handle of occurrence id.
func (v *View) BeginResize(id string) bool {
	var ok bool
	v.do(func() {
		o, found := v.findLocked(id)
		if !found || v.gestureActiveLocked() {
			return
		}
		v.menu.Dismiss()
		ok = v.resize.PointerDown(o)
	})
	return ok
}

// PointerMove forwards a global pointer move to the captured gesture.
func (v *View) PointerMove(p grid.Point) {
	v.do(func() { v.bus.Move(p) })
}

// PointerUp forwards a global pointer release. Drag and resize gestures
// resolve their drop cell from p and emit their intents from here.
func (v *View) PointerUp(p grid.Point) {
	v.do(func() { v.bus.Release(p) })
}

// CancelGesture abandons any drag, resize or slot selection in progress.
func (v *View) CancelGesture() {
	v.do(func() {
		v.drag.Cancel()
		v.resize.Cancel()
		v.slot = gesture.SlotController{}
	})
}

// GestureActive reports whether a drag or resize currently holds the
// global pointer listeners.
func (v *View) GestureActive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gestureActiveLocked()
}

// OpenMenu opens the context menu for occurrence id at p.
func (v *View) OpenMenu(id string, p grid.Point) bool {
	var ok bool
	v.do(func() {
		o, found := v.findLocked(id)
		if !found || v.gestureActiveLocked() {
			v.menu.Dismiss()
			return
		}
		var m gesture.MenuState
		if m, ok = v.menu.Open(o, p); ok && v.handlers.OnOccurrenceContextMenu != nil {
			h := v.handlers.OnOccurrenceContextMenu
			v.queue(func() { h(m) })
		}
	})
	return ok
}

// Menu returns the open context menu, if any.
func (v *View) Menu() (gesture.MenuState, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.menu.State()
}

// MenuAction runs a menu entry and reports whether an intent was emitted.
func (v *View) MenuAction(a gesture.Action) bool {
	var ok bool
	v.do(func() {
		var intent gesture.ToggleIntent
		if intent, ok = v.menu.Action(a); ok && v.handlers.OnToggleIntent != nil {
			h := v.handlers.OnToggleIntent
			v.queue(func() { h(intent) })
		}
	})
	return ok
}

// DismissMenu closes the context menu.
func (v *View) DismissMenu() {
	v.do(func() { v.menu.Dismiss() })
}

// Click handles a plain click anywhere; clicks outside the menu close it.
func (v *View) Click(p grid.Point) {
	v.do(func() { v.menu.ClickAt(p) })
}

// emitMove and emitResize run under v.mu, either from Drop or from a bus
// release dispatched inside do.
func (v *View) emitMove(intent gesture.MoveIntent) {
	if h := v.handlers.OnMoveIntent; h != nil {
		v.queue(func() { h(intent) })
	}
}

func (v *View) emitResize(intent gesture.ResizeIntent) {
	if h := v.handlers.OnResizeIntent; h != nil {
		v.queue(func() { h(intent) })
	}
}
