package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/gesture"
	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
	"github.com/bssong66/PerformanceTracker-sub000/internal/recurrence"
	"github.com/bssong66/PerformanceTracker-sub000/internal/store"
	"github.com/bssong66/PerformanceTracker-sub000/internal/view"
)

// Gesture endpoints replay the pointer sequence of the browser grid on a
// server-side view of the affected month, so the same capability checks
// and intent rules apply to API clients.

// unitLayout places cell i at column i%7, row i/7 with unit size.
var unitLayout = grid.Layout{CellWidth: 1, CellHeight: 1}

// cellCenter returns the unitLayout point of day in month's grid.
func cellCenter(month, day time.Time) (grid.Point, bool) {
	i := gesture.DaysBetween(grid.FirstCell(month), day)
	if i < 0 || i >= grid.Cells {
		return grid.Point{}, false
	}
	return grid.Point{X: float64(i%7) + 0.5, Y: float64(i/7) + 0.5}, true
}

// gestureOutcome collects what a view emitted during one request.
type gestureOutcome struct {
	intent any
	draft  *model.EventDraft
	err    error
}

var errGestureRefused = errors.New("gesture refused")

// gestureView returns a view of the month containing day whose intents are
// persisted to the store.
func (s *Server) gestureView(ctx context.Context, day time.Time) (*view.View, *gestureOutcome, error) {
	out := &gestureOutcome{}
	v := view.New(s.store, view.Handlers{}, view.Options{
		Location: s.opts.Location,
		Palette:  s.opts.Palette,
		Layout:   unitLayout,
		Now:      s.opts.Now,
	})
	base := view.Handlers{
		OnSlotSelect:   func(d model.EventDraft) { out.draft = &d },
		OnMoveIntent:   func(i gesture.MoveIntent) { out.intent = i },
		OnResizeIntent: func(i gesture.ResizeIntent) { out.intent = i },
		OnToggleIntent: func(i gesture.ToggleIntent) { out.intent = i },
		OnError: func(err error) {
			if out.err == nil {
				out.err = err
			}
		},
	}
	v.SetHandlers(view.Persist(ctx, v, s.store, base))
	if err := v.SetMonth(ctx, day); err != nil {
		return nil, nil, err
	}
	return v, out, nil
}

// locate returns the start of occurrence id: a stored event, a generated
// instance of one, or a task.
func (s *Server) locate(ctx context.Context, id string) (time.Time, error) {
	ev, err := s.store.GetEvent(ctx, id)
	if err == nil {
		return ev.Start, nil
	}
	if !store.IsNotFound(err) {
		return time.Time{}, err
	}
	if src, ok := recurrence.SourceOf(id); ok {
		if ev, err := s.store.GetEvent(ctx, src); err == nil {
			for _, o := range recurrence.Expand(ev) {
				if o.ID == id {
					return o.Start, nil
				}
			}
		}
	}
	if t, err := s.store.GetTask(ctx, id); err == nil {
		return t.Start, nil
	}
	return time.Time{}, store.NotFoundError{Kind: "occurrence", ID: id}
}

// finish writes the result of a gesture and records it in the metrics.
func (s *Server) finish(w http.ResponseWriter, kind string, out *gestureOutcome, emitted bool) {
	switch {
	case !emitted:
		s.metrics.Intent(kind, "rejected")
		writeError(w, http.StatusConflict, errGestureRefused.Error())
	case out.err != nil:
		s.metrics.Intent(kind, "failed")
		writeStoreError(w, out.err)
	default:
		s.metrics.Intent(kind, "applied")
		s.Invalidate()
		writeJSON(w, http.StatusOK, out.intent)
	}
}

// handleMove drags an occurrence from origin_day (default: its start day)
// and drops it on target_day.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OriginDay string `json:"origin_day"`
		TargetDay string `json:"target_day"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	target, err := s.parseDay(req.TargetDay)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	start, err := s.locate(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	origin := start.In(s.opts.Location)
	if req.OriginDay != "" {
		if origin, err = s.parseDay(req.OriginDay); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	v, out, err := s.gestureView(r.Context(), start)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	emitted := v.BeginDrag(id, origin) && v.Drop(target)
	s.finish(w, "move", out, emitted)
}

// handleResize drags the end handle of an occurrence onto day.
func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day string `json:"day"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, err := s.parseDay(req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	start, err := s.locate(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	v, out, err := s.gestureView(r.Context(), start)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	p, ok := cellCenter(v.Month(), day)
	if !ok {
		writeError(w, http.StatusBadRequest, "day is outside the displayed grid")
		return
	}
	if v.BeginResize(id) {
		v.PointerMove(p)
		v.PointerUp(p)
	}
	s.finish(w, "resize", out, out.intent != nil || out.err != nil)
}

// handleToggle runs the context menu's toggle entry on an occurrence.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	start, err := s.locate(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	v, out, err := s.gestureView(r.Context(), start)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	emitted := v.OpenMenu(id, grid.Point{}) && v.MenuAction(gesture.ActionToggleComplete)
	s.finish(w, "toggle", out, emitted)
}

// handleSlot turns a press and release on an empty day into a new all-day
// event.
func (s *Server) handleSlot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day        string         `json:"day"`
		ReleaseDay string         `json:"release_day,omitempty"`
		Title      string         `json:"title"`
		Priority   model.Priority `json:"priority,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	day, err := s.parseDay(req.Day)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	release := day
	if req.ReleaseDay != "" {
		if release, err = s.parseDay(req.ReleaseDay); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	v, out, err := s.gestureView(r.Context(), day)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	v.PressCell(day)
	if !v.ReleaseCell(release) || out.draft == nil {
		s.metrics.Intent("slot", "rejected")
		writeError(w, http.StatusConflict, errGestureRefused.Error())
		return
	}

	draft := *out.draft
	draft.Title = req.Title
	if req.Priority != "" {
		draft.Priority = req.Priority
	}
	ev, err := view.CreateFromDraft(r.Context(), v, s.store, draft)
	if err != nil {
		s.metrics.Intent("slot", "failed")
		writeStoreError(w, err)
		return
	}
	s.metrics.Intent("slot", "applied")
	s.Invalidate()
	writeJSON(w, http.StatusCreated, ev)
}
