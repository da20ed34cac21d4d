package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

const dayLayout = "2006-01-02"

func (s *Server) parseDay(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, raw, s.opts.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("day %q: want YYYY-MM-DD", raw)
	}
	return t, nil
}

// handleListEvents returns every stored event, or only those overlapping
// [from, to) when both query parameters are given.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		events, err := s.store.ListEvents(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
		return
	}

	from, err := s.parseDay(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := s.parseDay(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !to.After(from) {
		writeError(w, http.StatusBadRequest, "to must be after from")
		return
	}
	events, tasks, err := s.store.Range(r.Context(), from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "tasks": tasks})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.store.GetEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleCreateEvent accepts the same body as PATCH; start is required.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.EventPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Start == nil {
		writeError(w, http.StatusBadRequest, "start is required")
		return
	}
	if req.Color != nil && !model.ValidColor(*req.Color) {
		writeError(w, http.StatusBadRequest, "color must be #rgb, #rrggbb or a basic color name")
		return
	}

	draft := model.EventDraft{Start: *req.Start, End: *req.Start}
	if req.Title != nil {
		draft.Title = *req.Title
	}
	if req.End != nil {
		draft.End = *req.End
	}
	if req.AllDay != nil {
		draft.AllDay = *req.AllDay
	}
	if req.Priority != nil {
		draft.Priority = *req.Priority
	}
	ev, err := s.store.CreateEvent(r.Context(), draft)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	// The draft only carries the slot fields; the rest goes in as a patch.
	rest := model.EventPatch{Description: req.Description, Color: req.Color, Recurrence: req.Recurrence}
	if rest != (model.EventPatch{}) {
		id := ev.ID
		if ev, err = s.store.UpdateEvent(r.Context(), id, rest); err != nil {
			_ = s.store.DeleteEvent(r.Context(), id)
			writeStoreError(w, err)
			return
		}
	}
	s.Invalidate()
	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ev, err := s.store.UpdateEvent(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.Invalidate()
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	s.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// handleCompleted sets the completion flag explicitly, without going
// through the context menu.
func (s *Server) handleCompleted(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	id := r.PathValue("id")
	if err := s.store.SetCompleted(r.Context(), id, req.Completed); err != nil {
		writeStoreError(w, err)
		return
	}
	s.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "completed": req.Completed})
}
