package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

const eventColumns = `id, source, title, description, start_at, end_at, all_day, priority, completed, color,
	recurrence_kind, recurrence_interval, recurrence_end_date, recurrence_weekdays`

const dateLayout = "2006-01-02"

type scanner interface {
	Scan(dest ...any) error
}

// Range returns the events and tasks that can contribute an occurrence to
// [from, to). Recurring events are included while their end date has not
// passed from, so the caller can expand them.
func (s *Store) Range(ctx context.Context, from, to time.Time) ([]model.SourceEvent, []model.TaskRef, error) {
	events, err := s.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE start_unixms < ? AND until_unixms >= ? ORDER BY start_unixms, id`,
		to.UnixMilli(), from.UnixMilli())
	if err != nil {
		return nil, nil, fmt.Errorf("range events: %w", err)
	}
	tasks, err := s.queryTasks(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE start_unixms < ? AND end_unixms >= ? ORDER BY start_unixms, id`,
		to.UnixMilli(), from.UnixMilli())
	if err != nil {
		return nil, nil, fmt.Errorf("range tasks: %w", err)
	}
	return events, tasks, nil
}

// ListEvents returns every stored event ordered by start.
func (s *Store) ListEvents(ctx context.Context) ([]model.SourceEvent, error) {
	return s.queryEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_unixms, id`)
}

func (s *Store) GetEvent(ctx context.Context, id string) (model.SourceEvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	ev, _, err := s.scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SourceEvent{}, NotFoundError{Kind: "event", ID: id}
	}
	if err != nil {
		return model.SourceEvent{}, fmt.Errorf("get event %s: %w", id, err)
	}
	return ev, nil
}

// CreateEvent stores a new event built from draft and returns it with its
// generated id.
func (s *Store) CreateEvent(ctx context.Context, draft model.EventDraft) (model.SourceEvent, error) {
	ev := model.SourceEvent{
		ID:       uuid.NewString(),
		Title:    strings.TrimSpace(draft.Title),
		Start:    draft.Start,
		End:      draft.End,
		AllDay:   draft.AllDay,
		Priority: draft.Priority,
	}
	if err := s.put(ctx, s.db, ev, ""); err != nil {
		return model.SourceEvent{}, err
	}
	appLog.Debug("event created", "id", ev.ID)
	return s.GetEvent(ctx, ev.ID)
}

// UpdateEvent applies patch to the stored event id.
func (s *Store) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.SourceEvent, error) {
	cur, err := s.GetEvent(ctx, id)
	if err != nil {
		return model.SourceEvent{}, err
	}
	var source string
	if err := s.db.QueryRowContext(ctx, `SELECT source FROM events WHERE id = ?`, id).Scan(&source); err != nil {
		return model.SourceEvent{}, fmt.Errorf("update event %s: %w", id, err)
	}
	if err := s.put(ctx, s.db, patch.Apply(cur), source); err != nil {
		return model.SourceEvent{}, err
	}
	return s.GetEvent(ctx, id)
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "event", ID: id}
	}
	return nil
}

// SetCompleted flips the completion flag of an event.
func (s *Store) SetCompleted(ctx context.Context, id string, completed bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE events SET completed = ?, updated_at_unixms = ? WHERE id = ?`,
		boolToInt(completed), s.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("set completed %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "event", ID: id}
	}
	return nil
}

// ReplaceSource makes the events tagged with source exactly events: rows
// are upserted by id and rows the source no longer carries are removed.
// Completion flags set locally survive the upsert.
func (s *Store) ReplaceSource(ctx context.Context, source string, events []model.SourceEvent) (int, error) {
	if strings.TrimSpace(source) == "" {
		return 0, fmt.Errorf("%w: empty source", ErrInvalid)
	}
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]any, 0, len(events)+1)
	ids = append(ids, source)
	for _, ev := range events {
		var completed int
		err := tx.QueryRowContext(ctx, `SELECT completed FROM events WHERE id = ?`, ev.ID).Scan(&completed)
		switch {
		case err == nil:
			ev.Completed = completed == 1
		case !errors.Is(err, sql.ErrNoRows):
			return 0, err
		}
		if err := s.put(ctx, tx, ev, source); err != nil {
			return 0, err
		}
		ids = append(ids, ev.ID)
	}

	query := `DELETE FROM events WHERE source = ?`
	if len(events) > 0 {
		query += ` AND id NOT IN (?` + strings.Repeat(",?", len(events)-1) + `)`
	}
	res, err := tx.ExecContext(ctx, query, ids...)
	if err != nil {
		return 0, err
	}
	removed, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	appLog.Debug("source replaced", "source", source, "events", len(events), "removed", removed)
	return len(events), nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) put(ctx context.Context, db execer, ev model.SourceEvent, source string) error {
	if err := validateEvent(&ev); err != nil {
		return err
	}

	kind, interval, endDate, weekdays := string(model.RecurrenceNone), 1, "", ""
	until := ev.End
	if r := ev.Recurrence; r != nil && r.Kind != model.RecurrenceNone {
		kind = string(r.Kind)
		interval = r.Interval
		weekdays = r.Weekdays.String()
		if r.EndDate != nil {
			// The end date is a calendar date; keep it as written, the
			// way the expander reads it.
			endDate = r.EndDate.Format(dateLayout)
			y, m, d := r.EndDate.Date()
			// One day of slack covers the inclusive end date in any zone.
			if u := time.Date(y, m, d, 0, 0, 0, 0, s.loc).AddDate(0, 0, 2); u.After(until) {
				until = u
			}
		}
	}

	_, err := db.ExecContext(ctx, `INSERT INTO events(
			id, source, title, description, start_at, end_at, start_unixms, end_unixms,
			all_day, priority, completed, color,
			recurrence_kind, recurrence_interval, recurrence_end_date, recurrence_weekdays,
			until_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			title = excluded.title,
			description = excluded.description,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			start_unixms = excluded.start_unixms,
			end_unixms = excluded.end_unixms,
			all_day = excluded.all_day,
			priority = excluded.priority,
			completed = excluded.completed,
			color = excluded.color,
			recurrence_kind = excluded.recurrence_kind,
			recurrence_interval = excluded.recurrence_interval,
			recurrence_end_date = excluded.recurrence_end_date,
			recurrence_weekdays = excluded.recurrence_weekdays,
			until_unixms = excluded.until_unixms,
			updated_at_unixms = excluded.updated_at_unixms`,
		ev.ID, source, ev.Title, ev.Description,
		formatTime(ev.Start), formatTime(ev.End), ev.Start.UnixMilli(), ev.End.UnixMilli(),
		boolToInt(ev.AllDay), string(ev.Priority), boolToInt(ev.Completed), ev.Color,
		kind, interval, endDate, weekdays,
		until.UnixMilli(), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write event %s: %w", ev.ID, err)
	}
	return nil
}

func validateEvent(ev *model.SourceEvent) error {
	if ev.ID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalid)
	}
	if ev.Start.IsZero() {
		return fmt.Errorf("%w: event %s has no start", ErrInvalid, ev.ID)
	}
	if ev.End.IsZero() {
		ev.End = ev.Start
	}
	if ev.End.Before(ev.Start) {
		return fmt.Errorf("%w: event %s ends before it starts", ErrInvalid, ev.ID)
	}
	switch ev.Priority {
	case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
	case "":
		ev.Priority = model.PriorityMedium
	default:
		return fmt.Errorf("%w: unknown priority %q", ErrInvalid, ev.Priority)
	}
	if !model.ValidColor(ev.Color) {
		return fmt.Errorf("%w: event %s has invalid color %q", ErrInvalid, ev.ID, ev.Color)
	}
	return nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]model.SourceEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SourceEvent
	for rows.Next() {
		ev, _, err := s.scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *Store) scanEvent(row scanner) (model.SourceEvent, string, error) {
	var (
		ev                            model.SourceEvent
		source, startAt, endAt        string
		priority, kind, endDate, days string
		allDay, completed, interval   int
	)
	if err := row.Scan(&ev.ID, &source, &ev.Title, &ev.Description, &startAt, &endAt,
		&allDay, &priority, &completed, &ev.Color,
		&kind, &interval, &endDate, &days); err != nil {
		return model.SourceEvent{}, "", err
	}

	var err error
	if ev.Start, err = s.parseTime(startAt); err != nil {
		return model.SourceEvent{}, "", fmt.Errorf("event %s start: %w", ev.ID, err)
	}
	if ev.End, err = s.parseTime(endAt); err != nil {
		return model.SourceEvent{}, "", fmt.Errorf("event %s end: %w", ev.ID, err)
	}
	ev.AllDay = allDay == 1
	ev.Completed = completed == 1
	ev.Priority = model.Priority(priority)

	if k := model.ParseRecurrenceKind(kind); k != model.RecurrenceNone {
		rule := &model.RecurrenceRule{
			Kind:     k,
			Interval: interval,
			Weekdays: model.ParseWeekdays(days),
		}
		if endDate != "" {
			d, err := time.ParseInLocation(dateLayout, endDate, s.loc)
			if err != nil {
				appLog.Error("bad recurrence end date", err, "id", ev.ID)
			} else {
				rule.EndDate = &d
			}
		}
		ev.Recurrence = rule
	}
	return ev, source, nil
}
