package web

import (
	"net/http"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.ListTasks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// handleUpsertTask creates a task, or replaces it when the body carries an
// existing id. Tasks are written by the planner only; the calendar shows
// them read-only.
func (s *Server) handleUpsertTask(w http.ResponseWriter, r *http.Request) {
	var t model.TaskRef
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	status := http.StatusCreated
	if t.ID != "" {
		if _, err := s.store.GetTask(r.Context(), t.ID); err == nil {
			status = http.StatusOK
		}
	}
	saved, err := s.store.UpsertTask(r.Context(), t)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	s.Invalidate()
	writeJSON(w, status, saved)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeStoreError(w, err)
		return
	}
	s.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
