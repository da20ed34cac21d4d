package web

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/grid"
	"github.com/bssong66/PerformanceTracker-sub000/internal/ics"
	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/view"
)

const monthLayout = "2006-01"

type calendarResponse struct {
	Month     string      `json:"month"`
	Prev      string      `json:"prev"`
	Next      string      `json:"next"`
	From      time.Time   `json:"from"`
	To        time.Time   `json:"to"`
	Cells     []view.Cell `json:"cells"`
	Truncated []string    `json:"truncated"`
}

// parseMonth reads ?month=YYYY-MM, defaulting to the current month.
func (s *Server) parseMonth(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return grid.MonthStart(s.opts.Now().In(s.opts.Location)), nil
	}
	t, err := time.ParseInLocation(monthLayout, raw, s.opts.Location)
	if err != nil {
		return time.Time{}, fmt.Errorf("month %q: want YYYY-MM", raw)
	}
	return t, nil
}

// calendar returns the styled grid of month, from cache when fresh.
func (s *Server) calendar(ctx context.Context, month time.Time) (calendarResponse, error) {
	key := month.Format(monthLayout)
	now := time.Now()

	s.cacheMu.RLock()
	c, ok := s.cache[key]
	s.cacheMu.RUnlock()
	if ok && now.Sub(c.updatedAt) < calendarCacheTTL {
		return c.resp, nil
	}

	v := view.New(s.store, view.Handlers{}, view.Options{
		Location: s.opts.Location,
		Palette:  s.opts.Palette,
		Now:      s.opts.Now,
	})
	if err := v.SetMonth(ctx, month); err != nil {
		return calendarResponse{}, err
	}
	from, to := grid.Range(month)
	resp := calendarResponse{
		Month:     key,
		Prev:      month.AddDate(0, -1, 0).Format(monthLayout),
		Next:      month.AddDate(0, 1, 0).Format(monthLayout),
		From:      from,
		To:        to,
		Cells:     v.Cells(),
		Truncated: v.Truncated(),
	}
	if resp.Truncated == nil {
		resp.Truncated = []string{}
	}
	s.metrics.Truncated(len(resp.Truncated))

	s.cacheMu.Lock()
	s.cache[key] = calendarCache{resp: resp, updatedAt: now}
	s.cacheMu.Unlock()
	return resp, nil
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	month, err := s.parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.calendar(r.Context(), month)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

//go:embed calendar.html.tmpl
var calendarPageSrc string

var calendarPage = template.Must(template.New("calendar").Parse(calendarPageSrc))

// pageItem values land in a style attribute; html/template escapes each
// one as a CSS value.
type pageItem struct {
	Title         string
	Color         string
	Opacity       string
	Border        string
	Strikethrough bool
	Instance      bool
}

type pageCell struct {
	Day     int
	InMonth bool
	Today   bool
	Items   []pageItem
	More    int
}

type pageData struct {
	Title string
	Month string
	Prev  string
	Next  string
	Weeks [][]pageCell
}

// handleCalendarPage renders the month as a static HTML page. It is also
// what the snapshot command captures.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	month, err := s.parseMonth(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := s.calendar(r.Context(), month)
	if err != nil {
		appLog.Error("calendar page failed", err, "month", month.Format(monthLayout))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	y, m, d := s.opts.Now().In(s.opts.Location).Date()
	data := pageData{
		Title: month.Format("January 2006"),
		Month: resp.Month,
		Prev:  resp.Prev,
		Next:  resp.Next,
	}
	var week []pageCell
	for _, c := range resp.Cells {
		cy, cm, cd := c.Date.Date()
		pc := pageCell{
			Day:     cd,
			InMonth: c.InMonth,
			Today:   cy == y && cm == m && cd == d,
			More:    c.OverflowCount,
		}
		for i, o := range c.Visible {
			a := c.Styles[i]
			pc.Items = append(pc.Items, pageItem{
				Title:         o.Title,
				Color:         a.Color,
				Opacity:       strconv.FormatFloat(a.Opacity, 'f', 2, 64),
				Border:        string(a.Border),
				Strikethrough: a.Strikethrough,
				Instance:      o.RecurringInstance,
			})
		}
		week = append(week, pc)
		if len(week) == 7 {
			data.Weeks = append(data.Weeks, week)
			week = nil
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := calendarPage.Execute(w, data); err != nil {
		appLog.Error("render calendar page", err)
	}
}

// handleICS exports every stored event as one calendar.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	if err := ics.WriteCalendar(w, s.opts.CalendarName, events, s.opts.Now()); err != nil {
		appLog.Error("write calendar export", err)
	}
}
