package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/config"
	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
	"github.com/bssong66/PerformanceTracker-sub000/internal/store"
	"github.com/bssong66/PerformanceTracker-sub000/internal/style"
	"github.com/bssong66/PerformanceTracker-sub000/internal/subscribe"
	"github.com/bssong66/PerformanceTracker-sub000/internal/view"
)

// Store is what the HTTP API reads and writes.
type Store interface {
	view.Source
	view.Mutator
	GetEvent(ctx context.Context, id string) (model.SourceEvent, error)
	ListEvents(ctx context.Context) ([]model.SourceEvent, error)
	GetTask(ctx context.Context, id string) (model.TaskRef, error)
	ListTasks(ctx context.Context) ([]model.TaskRef, error)
	UpsertTask(ctx context.Context, t model.TaskRef) (model.TaskRef, error)
	DeleteTask(ctx context.Context, id string) error
}

type Options struct {
	Location     *time.Location
	Palette      style.Palette
	CalendarName string
	BasicAuth    *config.BasicAuthConfig
	// Metrics may be nil; a private registry is created then.
	Metrics *Metrics
	// Syncer enables POST /api/sync when set.
	Syncer *subscribe.Syncer
	Now    func() time.Time
}

// Server provides the calendar JSON API, the HTML month page and the ICS
// export.
type Server struct {
	store   Store
	opts    Options
	mux     *http.ServeMux
	metrics *Metrics

	// Built month grids, keyed by "YYYY-MM". Writes through the API and
	// subscription syncs drop the whole cache.
	cacheMu sync.RWMutex
	cache   map[string]calendarCache
}

const calendarCacheTTL = 30 * time.Second

type calendarCache struct {
	resp      calendarResponse
	updatedAt time.Time
}

func NewServer(st Store, opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.CalendarName == "" {
		opts.CalendarName = "lifecal"
	}
	s := &Server{
		store:   st,
		opts:    opts,
		mux:     http.NewServeMux(),
		metrics: opts.Metrics,
		cache:   make(map[string]calendarCache),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in basic auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+addr, "basic_auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Invalidate drops every cached month grid.
func (s *Server) Invalidate() {
	s.cacheMu.Lock()
	clear(s.cache)
	s.cacheMu.Unlock()
}

// OnSync is meant for subscribe.Options.OnSync.
func (s *Server) OnSync(reports []subscribe.Report) {
	s.metrics.Synced(reports)
	s.Invalidate()
}

func (s *Server) registerRoutes() {
	route := func(pattern, name string, h http.HandlerFunc) {
		s.mux.HandleFunc(pattern, s.metrics.instrument(name, h))
	}

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	route("GET /api/calendar", "calendar", s.handleCalendar)
	route("GET /calendar", "calendar_page", s.handleCalendarPage)
	route("GET /calendar.ics", "calendar_ics", s.handleICS)

	route("GET /api/events", "events_list", s.handleListEvents)
	route("POST /api/events", "events_create", s.handleCreateEvent)
	route("GET /api/events/{id}", "events_get", s.handleGetEvent)
	route("PATCH /api/events/{id}", "events_update", s.handleUpdateEvent)
	route("DELETE /api/events/{id}", "events_delete", s.handleDeleteEvent)
	route("PUT /api/events/{id}/completed", "events_completed", s.handleCompleted)
	route("POST /api/events/{id}/move", "events_move", s.handleMove)
	route("POST /api/events/{id}/resize", "events_resize", s.handleResize)
	route("POST /api/events/{id}/toggle", "events_toggle", s.handleToggle)
	route("POST /api/slots", "slots", s.handleSlot)

	route("GET /api/tasks", "tasks_list", s.handleListTasks)
	route("POST /api/tasks", "tasks_upsert", s.handleUpsertTask)
	route("DELETE /api/tasks/{id}", "tasks_delete", s.handleDeleteTask)

	route("POST /api/sync", "sync", s.handleSync)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if s.opts.Syncer == nil {
		writeError(w, http.StatusNotFound, "no subscriptions configured")
		return
	}
	reports := s.opts.Syncer.SyncAll(r.Context())
	type reportDTO struct {
		subscribe.Report
		Error string `json:"error,omitempty"`
	}
	out := make([]reportDTO, 0, len(reports))
	for _, rep := range reports {
		d := reportDTO{Report: rep}
		if rep.Err != nil {
			d.Error = rep.Err.Error()
		}
		out = append(out, d)
	}
	status := http.StatusOK
	if subscribe.Failed(reports) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{"reports": out})
}

func (s *Server) basicAuthEnabled() bool {
	a := s.opts.BasicAuth
	return a != nil && a.Username != "" && a.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.opts.BasicAuth.Username
	password := s.opts.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="lifecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writeStoreError maps store errors onto status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		appLog.Error("store request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
