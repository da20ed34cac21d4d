package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
	"github.com/bssong66/PerformanceTracker-sub000/internal/recurrence"
)

var january = grid.Layout{
	Month:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	CellWidth:  100,
	CellHeight: 100,
}

// pointFor returns the centre of the cell showing day in january.
func pointFor(t *testing.T, day time.Time) grid.Point {
	t.Helper()
	i := DaysBetween(grid.FirstCell(january.Month), day)
	require.True(t, i >= 0 && i < grid.Cells)
	r := january.CellRect(i)
	return grid.Point{X: (r.Min.X + r.Max.X) / 2, Y: (r.Min.Y + r.Max.Y) / 2}
}

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func eventOcc() model.Occurrence {
	return model.FromEvent(model.SourceEvent{
		ID:    "ev1",
		Title: "Review",
		Start: time.Date(2025, 1, 6, 14, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 6, 16, 0, 0, 0, time.UTC),
	})
}

func immutableOccurrences(t *testing.T) map[string]model.Occurrence {
	t.Helper()
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	expanded := recurrence.Expand(model.SourceEvent{
		ID:         "rec",
		Start:      time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC),
		Recurrence: &model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 1, EndDate: &end},
	})
	require.True(t, len(expanded) > 1)

	return map[string]model.Occurrence{
		"task": model.FromTask(model.TaskRef{
			ID:    "t1",
			Start: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC),
		}),
		"recurring instance": expanded[1],
	}
}

func TestBusCaptureRelease(t *testing.T) {
	bus := NewBus()
	var moves int
	c := bus.Acquire(Listener{Move: func(grid.Point) { moves++ }})
	assert.Equal(t, 1, bus.Active())

	bus.Move(grid.Point{})
	c.Release()
	c.Release()
	bus.Move(grid.Point{})

	assert.Equal(t, 1, moves)
	assert.Equal(t, 0, bus.Active())
}

func TestDragMovePreservesTimeOfDay(t *testing.T) {
	bus := NewBus()
	c := NewDragController(bus, january, nil)
	o := eventOcc()

	require.True(t, c.Start(o, day(6)))
	assert.Equal(t, 1, bus.Active())
	c.DragOver(day(8))
	st, ok := c.State()
	require.True(t, ok)
	assert.Equal(t, day(8), st.OverDay)

	intent, ok := c.Drop(day(10))
	require.True(t, ok)
	assert.Equal(t, "ev1", intent.ID)
	assert.Equal(t, time.Date(2025, 1, 10, 14, 30, 0, 0, time.UTC), intent.NewStart)
	assert.Equal(t, o.End.Sub(o.Start), intent.NewEnd.Sub(intent.NewStart))

	_, active := c.State()
	assert.False(t, active)
	assert.Equal(t, 0, bus.Active())
}

func TestDragBackwardsAcrossMonth(t *testing.T) {
	c := NewDragController(NewBus(), january, nil)
	o := eventOcc()

	require.True(t, c.Start(o, day(6)))
	intent, ok := c.Drop(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 12, 30, 14, 30, 0, 0, time.UTC), intent.NewStart)
	assert.Equal(t, time.Date(2024, 12, 30, 16, 0, 0, 0, time.UTC), intent.NewEnd)
}

func TestDragSameDayDropEmitsNothing(t *testing.T) {
	bus := NewBus()
	c := NewDragController(bus, january, nil)

	require.True(t, c.Start(eventOcc(), day(6)))
	_, ok := c.Drop(day(6))
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Active())
}

func TestDragThroughBus(t *testing.T) {
	bus := NewBus()
	var got []MoveIntent
	c := NewDragController(bus, january, func(i MoveIntent) { got = append(got, i) })

	require.True(t, c.Start(eventOcc(), day(6)))
	bus.Move(pointFor(t, day(9)))
	st, _ := c.State()
	assert.Equal(t, day(9), st.OverDay)

	bus.Release(pointFor(t, day(9)))
	require.Len(t, got, 1)
	assert.Equal(t, 9, got[0].NewStart.Day())
	assert.Equal(t, 0, bus.Active())
}

func TestDragReleasedOutsideGridIsAbandoned(t *testing.T) {
	bus := NewBus()
	var got []MoveIntent
	c := NewDragController(bus, january, func(i MoveIntent) { got = append(got, i) })

	require.True(t, c.Start(eventOcc(), day(6)))
	bus.Release(grid.Point{X: -10, Y: -10})
	assert.Empty(t, got)
	assert.Equal(t, 0, bus.Active())
	_, active := c.State()
	assert.False(t, active)
}

func TestResizeExtendsToEndOfDay(t *testing.T) {
	bus := NewBus()
	c := NewResizeController(bus, january, nil)
	o := eventOcc()

	require.True(t, c.PointerDown(o))
	c.PointerMove(grid.Point{X: 3, Y: 4})
	st, _ := c.State()
	assert.Equal(t, grid.Point{X: 3, Y: 4}, st.Cursor)
	assert.Equal(t, o.End, st.OriginalEnd)

	intent, ok := c.PointerUp(pointFor(t, day(8)))
	require.True(t, ok)
	assert.Equal(t, o.Start, intent.NewStart)
	assert.Equal(t, time.Date(2025, 1, 8, 23, 59, 59, int(999*time.Millisecond), time.UTC), intent.NewEnd)
	assert.Equal(t, 0, bus.Active())
}

func TestResizeSameDayIsAccepted(t *testing.T) {
	c := NewResizeController(NewBus(), january, nil)
	o := eventOcc()

	require.True(t, c.PointerDown(o))
	intent, ok := c.PointerUp(pointFor(t, day(6)))
	require.True(t, ok)
	assert.Equal(t, 6, intent.NewEnd.Day())
}

func TestResizeRejectsInversion(t *testing.T) {
	bus := NewBus()
	var got []ResizeIntent
	c := NewResizeController(bus, january, func(i ResizeIntent) { got = append(got, i) })
	o := eventOcc()

	require.True(t, c.PointerDown(o))
	_, ok := c.PointerUp(pointFor(t, day(5)))
	assert.False(t, ok)
	assert.Equal(t, 0, bus.Active())

	require.True(t, c.PointerDown(o))
	bus.Release(pointFor(t, day(2)))
	assert.Empty(t, got)
	assert.Equal(t, 0, bus.Active())
}

func TestResizeOutsideGrid(t *testing.T) {
	bus := NewBus()
	c := NewResizeController(bus, january, nil)

	require.True(t, c.PointerDown(eventOcc()))
	_, ok := c.PointerUp(grid.Point{X: 5000, Y: 5000})
	assert.False(t, ok)
	_, active := c.State()
	assert.False(t, active)
	assert.Equal(t, 0, bus.Active())
}

func TestContextMenuToggle(t *testing.T) {
	c := NewContextMenuController(grid.Point{})
	o := eventOcc()

	m, ok := c.Open(o, grid.Point{X: 50, Y: 60})
	require.True(t, ok)
	assert.Equal(t, []Action{ActionToggleComplete}, m.Actions)
	assert.True(t, m.Bounds.Contains(grid.Point{X: 51, Y: 61}))

	intent, ok := c.Action(ActionToggleComplete)
	require.True(t, ok)
	assert.Equal(t, ToggleIntent{ID: "ev1", Completed: true}, intent)
	_, open := c.State()
	assert.False(t, open)

	o.Completed = true
	c.Open(o, grid.Point{})
	intent, _ = c.Action(ActionToggleComplete)
	assert.False(t, intent.Completed)
}

func TestContextMenuClosesOnOutsideClickAndDismiss(t *testing.T) {
	c := NewContextMenuController(grid.Point{X: 100, Y: 30})

	c.Open(eventOcc(), grid.Point{X: 10, Y: 10})
	assert.False(t, c.ClickAt(grid.Point{X: 20, Y: 20}))
	_, open := c.State()
	assert.True(t, open)

	assert.True(t, c.ClickAt(grid.Point{X: 500, Y: 20}))
	_, open = c.State()
	assert.False(t, open)

	c.Open(eventOcc(), grid.Point{})
	c.Dismiss()
	_, ok := c.Action(ActionToggleComplete)
	assert.False(t, ok)
}

func TestImmutableOccurrencesNeverEmit(t *testing.T) {
	for name, o := range immutableOccurrences(t) {
		t.Run(name, func(t *testing.T) {
			bus := NewBus()
			emitted := 0
			drag := NewDragController(bus, january, func(MoveIntent) { emitted++ })
			resize := NewResizeController(bus, january, func(ResizeIntent) { emitted++ })
			menu := NewContextMenuController(grid.Point{})

			assert.False(t, drag.Start(o, day(6)))
			_, ok := drag.Drop(day(9))
			assert.False(t, ok)

			assert.False(t, resize.PointerDown(o))
			_, ok = resize.PointerUp(pointFor(t, day(9)))
			assert.False(t, ok)

			bus.Release(pointFor(t, day(9)))
			assert.Zero(t, emitted)
			assert.Equal(t, 0, bus.Active())

			_, ok = menu.Open(o, grid.Point{})
			assert.False(t, ok)
			_, ok = menu.Action(ActionToggleComplete)
			assert.False(t, ok)
		})
	}
}

func TestSlotSelection(t *testing.T) {
	var c SlotController

	c.PointerDown(time.Date(2025, 1, 9, 13, 0, 0, 0, time.UTC), false)
	assert.True(t, c.Pending())
	draft, ok := c.PointerUp(day(9))
	require.True(t, ok)
	assert.Equal(t, day(9), draft.Start)
	assert.Equal(t, day(9), draft.End)
	assert.True(t, draft.AllDay)
	assert.False(t, c.Pending())

	c.PointerDown(day(9), true)
	_, ok = c.PointerUp(day(9))
	assert.False(t, ok)

	c.PointerDown(day(9), false)
	_, ok = c.PointerUp(day(10))
	assert.False(t, ok)

	_, ok = c.PointerUp(day(10))
	assert.False(t, ok)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 4, DaysBetween(day(6), day(10).Add(23*time.Hour)))
	assert.Equal(t, -7, DaysBetween(day(8), day(1)))
	assert.Equal(t, 1, DaysBetween(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), day(1)))
}
