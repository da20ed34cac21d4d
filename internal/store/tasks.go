package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

const taskColumns = `id, title, start_at, end_at, priority, project_color, completed`

func (s *Store) ListTasks(ctx context.Context) ([]model.TaskRef, error) {
	return s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY start_unixms, id`)
}

func (s *Store) GetTask(ctx context.Context, id string) (model.TaskRef, error) {
	tasks, err := s.queryTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	if err != nil {
		return model.TaskRef{}, fmt.Errorf("get task %s: %w", id, err)
	}
	if len(tasks) == 0 {
		return model.TaskRef{}, NotFoundError{Kind: "task", ID: id}
	}
	return tasks[0], nil
}

// UpsertTask writes t, assigning an id when it has none.
func (s *Store) UpsertTask(ctx context.Context, t model.TaskRef) (model.TaskRef, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Start.IsZero() {
		return model.TaskRef{}, fmt.Errorf("%w: task %s has no start", ErrInvalid, t.ID)
	}
	if t.End.IsZero() {
		t.End = t.Start
	}
	if t.End.Before(t.Start) {
		return model.TaskRef{}, fmt.Errorf("%w: task %s ends before it starts", ErrInvalid, t.ID)
	}
	switch t.Priority {
	case model.TaskPriorityA, model.TaskPriorityB, model.TaskPriorityC:
	case "":
		t.Priority = model.TaskPriorityB
	default:
		return model.TaskRef{}, fmt.Errorf("%w: unknown task priority %q", ErrInvalid, t.Priority)
	}
	if !model.ValidColor(t.ProjectColor) {
		return model.TaskRef{}, fmt.Errorf("%w: task %s has invalid color %q", ErrInvalid, t.ID, t.ProjectColor)
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks(
			id, title, start_at, end_at, start_unixms, end_unixms, priority, project_color, completed, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			start_unixms = excluded.start_unixms,
			end_unixms = excluded.end_unixms,
			priority = excluded.priority,
			project_color = excluded.project_color,
			completed = excluded.completed,
			updated_at_unixms = excluded.updated_at_unixms`,
		t.ID, t.Title, formatTime(t.Start), formatTime(t.End), t.Start.UnixMilli(), t.End.UnixMilli(),
		string(t.Priority), t.ProjectColor, boolToInt(t.Completed), s.now().UnixMilli())
	if err != nil {
		return model.TaskRef{}, fmt.Errorf("write task %s: %w", t.ID, err)
	}
	t.Start = t.Start.In(s.loc)
	t.End = t.End.In(s.loc)
	return t, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "task", ID: id}
	}
	return nil
}

func (s *Store) queryTasks(ctx context.Context, query string, args ...any) ([]model.TaskRef, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TaskRef
	for rows.Next() {
		var (
			t              model.TaskRef
			startAt, endAt string
			priority       string
			completed      int
		)
		if err := rows.Scan(&t.ID, &t.Title, &startAt, &endAt, &priority, &t.ProjectColor, &completed); err != nil {
			return nil, err
		}
		if t.Start, err = s.parseTime(startAt); err != nil {
			return nil, fmt.Errorf("task %s start: %w", t.ID, err)
		}
		if t.End, err = s.parseTime(endAt); err != nil {
			return nil, fmt.Errorf("task %s end: %w", t.ID, err)
		}
		t.Priority = model.TaskPriority(priority)
		t.Completed = completed == 1
		out = append(out, t)
	}
	return out, rows.Err()
}
