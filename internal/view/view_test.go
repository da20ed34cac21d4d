package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssong66/PerformanceTracker-sub000/internal/gesture"
	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// memStore is an in-memory Source and Mutator.
type memStore struct {
	events  map[string]model.SourceEvent
	tasks   []model.TaskRef
	failOps bool
	reads   int
}

func newMemStore(events ...model.SourceEvent) *memStore {
	m := &memStore{events: make(map[string]model.SourceEvent)}
	for _, ev := range events {
		m.events[ev.ID] = ev
	}
	return m
}

func (m *memStore) Range(_ context.Context, _, _ time.Time) ([]model.SourceEvent, []model.TaskRef, error) {
	m.reads++
	out := make([]model.SourceEvent, 0, len(m.events))
	for _, id := range []string{"ev1", "ev2", "rec"} {
		if ev, ok := m.events[id]; ok {
			out = append(out, ev)
		}
	}
	return out, m.tasks, nil
}

func (m *memStore) CreateEvent(_ context.Context, d model.EventDraft) (model.SourceEvent, error) {
	ev := model.SourceEvent{ID: "ev2", Title: d.Title, Start: d.Start, End: d.End, AllDay: d.AllDay}
	m.events[ev.ID] = ev
	return ev, nil
}

func (m *memStore) UpdateEvent(_ context.Context, id string, p model.EventPatch) (model.SourceEvent, error) {
	if m.failOps {
		return model.SourceEvent{}, errors.New("network down")
	}
	ev := p.Apply(m.events[id])
	m.events[id] = ev
	return ev, nil
}

func (m *memStore) DeleteEvent(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *memStore) SetCompleted(_ context.Context, id string, completed bool) error {
	if m.failOps {
		return errors.New("network down")
	}
	ev := m.events[id]
	ev.Completed = completed
	m.events[id] = ev
	return nil
}

var layout = grid.Layout{CellWidth: 100, CellHeight: 100}

func jan(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }

// centre returns the pointer position of day's cell in January 2025.
func centre(d time.Time) grid.Point {
	i := gesture.DaysBetween(grid.FirstCell(jan(1)), d)
	r := layout.CellRect(i)
	return grid.Point{X: r.Min.X + 50, Y: r.Min.Y + 50}
}

func fixture(t *testing.T) (*View, *memStore) {
	t.Helper()
	end := jan(8)
	store := newMemStore(
		model.SourceEvent{
			ID: "ev1", Title: "Dentist", Priority: model.PriorityHigh,
			Start: time.Date(2025, 1, 6, 14, 0, 0, 0, time.UTC),
			End:   time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC),
		},
		model.SourceEvent{
			ID: "rec", Title: "Run",
			Start:      time.Date(2025, 1, 6, 7, 0, 0, 0, time.UTC),
			End:        time.Date(2025, 1, 6, 8, 0, 0, 0, time.UTC),
			Recurrence: &model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 1, EndDate: &end},
		},
	)
	store.tasks = []model.TaskRef{{
		ID: "t1", Title: "File taxes", Priority: model.TaskPriorityA,
		Start: time.Date(2025, 1, 7, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC),
	}}

	v := New(store, Handlers{}, Options{
		Location: time.UTC,
		Layout:   layout,
		Now:      func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, v.Refresh(context.Background()))
	return v, store
}

func TestViewBuildsStyledGrid(t *testing.T) {
	v, _ := fixture(t)

	cells := v.Cells()
	require.Len(t, cells, grid.Cells)
	assert.Equal(t, jan(1), v.Month())

	b, ok := grid.Find(v.Buckets(), jan(6))
	require.True(t, ok)
	assert.Len(t, b.Visible, 2)

	for _, c := range cells {
		assert.Len(t, c.Styles, len(c.Visible))
	}

	o, ok := v.Occurrence("rec-repeat-1")
	require.True(t, ok)
	assert.True(t, o.RecurringInstance)
}

func TestViewMoveIsPersistedAndRefreshed(t *testing.T) {
	v, store := fixture(t)
	var moved []gesture.MoveIntent
	v.SetHandlers(Persist(context.Background(), v, store, Handlers{
		OnMoveIntent: func(i gesture.MoveIntent) { moved = append(moved, i) },
	}))

	require.True(t, v.BeginDrag("ev1", jan(6)))
	assert.True(t, v.GestureActive())
	v.PointerMove(centre(jan(9)))
	v.PointerUp(centre(jan(10)))

	assert.False(t, v.GestureActive())
	require.Len(t, moved, 1)
	assert.Equal(t, time.Date(2025, 1, 10, 14, 0, 0, 0, time.UTC), store.events["ev1"].Start)
	assert.Equal(t, time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC), store.events["ev1"].End)

	b, _ := grid.Find(v.Buckets(), jan(10))
	assert.Equal(t, "ev1", b.Visible[0].ID)
}

func TestViewDirectDrop(t *testing.T) {
	v, store := fixture(t)
	v.SetHandlers(Persist(context.Background(), v, store, Handlers{}))

	require.True(t, v.BeginDrag("ev1", jan(6)))
	v.DragOver(jan(7))
	assert.True(t, v.Drop(jan(2)))
	assert.Equal(t, 2, store.events["ev1"].Start.Day())
}

func TestViewResizeAndRejectedResize(t *testing.T) {
	v, store := fixture(t)
	var resized int
	v.SetHandlers(Persist(context.Background(), v, store, Handlers{
		OnResizeIntent: func(gesture.ResizeIntent) { resized++ },
	}))

	require.True(t, v.BeginResize("ev1"))
	v.PointerUp(centre(jan(3)))
	assert.Zero(t, resized)
	assert.Equal(t, time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC), store.events["ev1"].End)
	assert.False(t, v.GestureActive())

	require.True(t, v.BeginResize("ev1"))
	v.PointerMove(centre(jan(7)))
	v.PointerUp(centre(jan(8)))
	assert.Equal(t, 1, resized)
	assert.Equal(t, time.Date(2025, 1, 8, 23, 59, 59, int(999*time.Millisecond), time.UTC), store.events["ev1"].End)
}

func TestViewImmutableOccurrences(t *testing.T) {
	v, store := fixture(t)
	emitted := 0
	v.SetHandlers(Persist(context.Background(), v, store, Handlers{
		OnMoveIntent:   func(gesture.MoveIntent) { emitted++ },
		OnResizeIntent: func(gesture.ResizeIntent) { emitted++ },
		OnToggleIntent: func(gesture.ToggleIntent) { emitted++ },
	}))

	for _, id := range []string{"t1", "rec-repeat-1"} {
		assert.False(t, v.BeginDrag(id, jan(7)), id)
		assert.False(t, v.Drop(jan(9)))
		assert.False(t, v.BeginResize(id), id)
		v.PointerUp(centre(jan(9)))
		assert.False(t, v.OpenMenu(id, grid.Point{}), id)
		assert.False(t, v.MenuAction(gesture.ActionToggleComplete))
	}
	assert.Zero(t, emitted)
	assert.False(t, v.GestureActive())
}

func TestViewGesturesAreExclusive(t *testing.T) {
	v, _ := fixture(t)

	require.True(t, v.BeginDrag("ev1", jan(6)))
	assert.False(t, v.BeginResize("ev1"))
	assert.False(t, v.OpenMenu("ev1", grid.Point{}))
	v.CancelGesture()
	assert.False(t, v.GestureActive())
	assert.True(t, v.BeginResize("ev1"))
}

func TestViewContextMenuToggle(t *testing.T) {
	v, store := fixture(t)
	var menus []gesture.MenuState
	v.SetHandlers(Persist(context.Background(), v, store, Handlers{
		OnOccurrenceContextMenu: func(m gesture.MenuState) { menus = append(menus, m) },
	}))

	require.True(t, v.OpenMenu("ev1", grid.Point{X: 10, Y: 10}))
	require.Len(t, menus, 1)
	_, open := v.Menu()
	assert.True(t, open)

	assert.True(t, v.MenuAction(gesture.ActionToggleComplete))
	assert.True(t, store.events["ev1"].Completed)
	o, _ := v.Occurrence("ev1")
	assert.True(t, o.Completed)

	require.True(t, v.OpenMenu("ev1", grid.Point{X: 10, Y: 10}))
	v.Click(grid.Point{X: 900, Y: 900})
	_, open = v.Menu()
	assert.False(t, open)
}

func TestViewPersistFailureKeepsData(t *testing.T) {
	v, store := fixture(t)
	store.failOps = true
	var errs []error
	v.SetHandlers(Persist(context.Background(), v, store, Handlers{
		OnError: func(err error) { errs = append(errs, err) },
	}))
	reads := store.reads

	require.True(t, v.BeginDrag("ev1", jan(6)))
	assert.True(t, v.Drop(jan(9)))
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "network down")
	assert.Equal(t, reads, store.reads)

	o, _ := v.Occurrence("ev1")
	assert.Equal(t, 6, o.Start.Day())
}

func TestViewSlotSelectionAndCreate(t *testing.T) {
	v, store := fixture(t)
	var drafts []model.EventDraft
	v.SetHandlers(Handlers{OnSlotSelect: func(d model.EventDraft) { drafts = append(drafts, d) }})

	v.PressCell(jan(20))
	assert.True(t, v.ReleaseCell(jan(20)))
	require.Len(t, drafts, 1)
	assert.True(t, drafts[0].AllDay)
	assert.Equal(t, jan(20), drafts[0].Start)

	// A press on an occurrence never becomes a slot selection.
	assert.True(t, v.SelectOccurrence("ev1"))
	assert.False(t, v.ReleaseCell(jan(6)))
	sel, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "ev1", sel.ID)

	d := drafts[0]
	d.Title = "Holiday"
	_, err := CreateFromDraft(context.Background(), v, store, d)
	require.NoError(t, err)
	b, _ := grid.Find(v.Buckets(), jan(20))
	require.Len(t, b.Visible, 1)
	assert.Equal(t, "Holiday", b.Visible[0].Title)

	require.NoError(t, Delete(context.Background(), v, store, "ev2"))
	b, _ = grid.Find(v.Buckets(), jan(20))
	assert.Empty(t, b.Visible)
}

func TestViewNavigationAbandonsGestures(t *testing.T) {
	v, _ := fixture(t)
	ctx := context.Background()

	require.True(t, v.BeginDrag("ev1", jan(6)))
	require.NoError(t, v.Next(ctx))
	assert.False(t, v.GestureActive())
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), v.Month())

	require.NoError(t, v.Prev(ctx))
	require.NoError(t, v.Prev(ctx))
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), v.Month())

	require.NoError(t, v.Today(ctx))
	assert.Equal(t, jan(1), v.Month())
}

func TestMaterializeReportsTruncation(t *testing.T) {
	end := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	occ, truncated := Materialize([]model.SourceEvent{{
		ID:         "long",
		Start:      jan(1),
		End:        jan(1).Add(time.Hour),
		Recurrence: &model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 1, EndDate: &end},
	}}, nil)
	assert.Len(t, occ, 101)
	assert.Equal(t, []string{"long"}, truncated)
}
