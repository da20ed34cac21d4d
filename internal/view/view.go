// Package view binds the recurrence expander, the month grid, the styler
// and the gesture controllers into one calendar view. The view owns the
// current month, the selected occurrence and the open menu; the shell
// around it only forwards pointer input and persists emitted intents.
package view

import (
	"context"
	"sync"
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/gesture"
	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
	"github.com/bssong66/PerformanceTracker-sub000/internal/recurrence"
	"github.com/bssong66/PerformanceTracker-sub000/internal/style"
)

// Source reads the events and tasks overlapping [from, to).
type Source interface {
	Range(ctx context.Context, from, to time.Time) ([]model.SourceEvent, []model.TaskRef, error)
}

// Handlers are the callbacks the shell wires to its network layer. Any of
// them may be nil.
type Handlers struct {
	OnSlotSelect            func(model.EventDraft)
	OnOccurrenceSelect      func(model.Occurrence)
	OnOccurrenceContextMenu func(gesture.MenuState)
	OnMoveIntent            func(gesture.MoveIntent)
	OnResizeIntent          func(gesture.ResizeIntent)
	OnToggleIntent          func(gesture.ToggleIntent)
	// OnError surfaces persistence failures, e.g. as a toast.
	OnError func(error)
}

// Options configures a View.
type Options struct {
	Location *time.Location
	Palette  style.Palette
	// Layout is the rendered geometry used to hit-test pointer positions.
	// Its Month is kept in sync with the view.
	Layout   grid.Layout
	MenuSize grid.Point
	// Now is injectable for tests.
	Now func() time.Time
}

// Cell is a day bucket plus the style of each visible occurrence.
type Cell struct {
	grid.DayBucket
	Styles []style.Attributes `json:"styles"`
}

// View is the calendar orchestrator. It is safe for concurrent use.
type View struct {
	mu sync.Mutex

	src      Source
	handlers Handlers
	styler   style.Styler
	loc      *time.Location
	now      func() time.Time

	month       time.Time
	layout      grid.Layout
	occurrences []model.Occurrence
	cells       []grid.DayBucket
	truncated   []string
	selected    string

	bus    *gesture.Bus
	drag   *gesture.DragController
	resize *gesture.ResizeController
	menu   *gesture.ContextMenuController
	slot   gesture.SlotController

	// pending holds callbacks queued under mu and run after it is released,
	// so handlers may call back into the view.
	pending []func()
}

// New returns a view showing the current month. Call Refresh to load data.
func New(src Source, h Handlers, opts Options) *View {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	v := &View{
		src:      src,
		handlers: h,
		styler:   style.New(opts.Palette),
		loc:      opts.Location,
		now:      opts.Now,
		layout:   opts.Layout,
		bus:      gesture.NewBus(),
		menu:     gesture.NewContextMenuController(opts.MenuSize),
	}
	v.month = grid.MonthStart(v.now().In(v.loc))
	v.layout.Month = v.month
	v.cells = grid.Build(v.month, nil)

	hit := hitTester{v: v}
	v.drag = gesture.NewDragController(v.bus, hit, v.emitMove)
	v.resize = gesture.NewResizeController(v.bus, hit, v.emitResize)
	return v
}

// hitTester reads the layout through the view so month changes apply to
// gestures already wired to it. Callers hold v.mu.
type hitTester struct{ v *View }

func (h hitTester) DayAt(p grid.Point) (time.Time, bool) {
	return h.v.layout.DayAt(p)
}

// Refresh re-reads the visible range and rebuilds the grid.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	month := v.month
	v.mu.Unlock()

	from, to := grid.Range(month)
	events, tasks, err := v.src.Range(ctx, from, to)
	if err != nil {
		appLog.Error("view refresh failed", err, "month", month.Format("2006-01"))
		return err
	}

	occ, truncated := Materialize(events, tasks)

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.month.Equal(month) {
		// Navigated away while loading; the newer month refreshes itself.
		return nil
	}
	v.occurrences = occ
	v.truncated = truncated
	v.cells = grid.Build(v.month, occ)
	appLog.Debug("view refreshed", "month", month.Format("2006-01"), "occurrences", len(occ))
	return nil
}

// Materialize expands every event and projects every task. It also returns
// the ids of events whose expansion hit the instance cap.
func Materialize(events []model.SourceEvent, tasks []model.TaskRef) ([]model.Occurrence, []string) {
	occ := make([]model.Occurrence, 0, len(events)+len(tasks))
	var truncated []string
	for _, ev := range events {
		res := recurrence.ExpandWithReport(ev)
		if res.Truncated {
			truncated = append(truncated, ev.ID)
			appLog.Info("recurrence truncated at cap", "id", ev.ID, "cap", recurrence.MaxGenerated)
		}
		occ = append(occ, res.Occurrences...)
	}
	for _, t := range tasks {
		occ = append(occ, model.FromTask(t))
	}
	return occ, truncated
}

// Month returns the first day of the displayed month.
func (v *View) Month() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.month
}

// SetMonth switches to the month containing t. Open gestures are abandoned.
func (v *View) SetMonth(ctx context.Context, t time.Time) error {
	v.mu.Lock()
	v.month = grid.MonthStart(t.In(v.loc))
	v.layout.Month = v.month
	v.cells = grid.Build(v.month, nil)
	v.occurrences = nil
	v.abandonLocked()
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Next moves one month forward.
func (v *View) Next(ctx context.Context) error {
	return v.SetMonth(ctx, v.Month().AddDate(0, 1, 0))
}

// Prev moves one month back.
func (v *View) Prev(ctx context.Context) error {
	return v.SetMonth(ctx, v.Month().AddDate(0, -1, 0))
}

// Today jumps to the current month.
func (v *View) Today(ctx context.Context) error {
	return v.SetMonth(ctx, v.now())
}

// SetLayout updates the rendered geometry used for hit-testing.
func (v *View) SetLayout(l grid.Layout) {
	v.mu.Lock()
	defer v.mu.Unlock()
	l.Month = v.month
	v.layout = l
}

// Cells returns the 42 styled cells of the displayed month.
func (v *View) Cells() []Cell {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]Cell, 0, len(v.cells))
	for _, b := range v.cells {
		c := Cell{DayBucket: b, Styles: make([]style.Attributes, 0, len(b.Visible))}
		for _, o := range b.Visible {
			c.Styles = append(c.Styles, v.styler.Style(o))
		}
		out = append(out, c)
	}
	return out
}

// Buckets returns the unstyled day buckets.
func (v *View) Buckets() []grid.DayBucket {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]grid.DayBucket(nil), v.cells...)
}

// Truncated lists events whose recurrence was cut at the instance cap.
func (v *View) Truncated() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.truncated...)
}

// Styler exposes the view's styler for shells that render themselves.
func (v *View) Styler() style.Styler {
	return v.styler
}

// Occurrence looks up a materialized occurrence by id.
func (v *View) Occurrence(id string) (model.Occurrence, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.findLocked(id)
}

func (v *View) findLocked(id string) (model.Occurrence, bool) {
	for _, o := range v.occurrences {
		if o.ID == id {
			return o, true
		}
	}
	return model.Occurrence{}, false
}

// Selected returns the selected occurrence, if any.
func (v *View) Selected() (model.Occurrence, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == "" {
		return model.Occurrence{}, false
	}
	return v.findLocked(v.selected)
}

// do runs fn under the view lock and then flushes queued callbacks.
func (v *View) do(fn func()) {
	v.mu.Lock()
	fn()
	pending := v.pending
	v.pending = nil
	v.mu.Unlock()

	for _, f := range pending {
		f()
	}
}

func (v *View) queue(f func()) {
	v.pending = append(v.pending, f)
}

func (v *View) abandonLocked() {
	v.drag.Cancel()
	v.resize.Cancel()
	v.menu.Dismiss()
	v.slot = gesture.SlotController{}
}

// gestureActiveLocked reports whether a drag or resize holds the pointer.
func (v *View) gestureActiveLocked() bool {
	return v.bus.Active() > 0
}
