package view

import (
	"context"
	"fmt"

	"github.com/bssong66/PerformanceTracker-sub000/internal/gesture"
	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// Mutator is the write side of the persistence collaborator.
type Mutator interface {
	CreateEvent(ctx context.Context, draft model.EventDraft) (model.SourceEvent, error)
	UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.SourceEvent, error)
	DeleteEvent(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id string, completed bool) error
}

// Persist returns base with the move, resize and toggle callbacks wired to
// m. Each intent is written once; on success the view re-reads its month,
// on failure the error goes to base.OnError and the view keeps its data.
func Persist(ctx context.Context, v *View, m Mutator, base Handlers) Handlers {
	h := base

	report := func(op, id string, err error) {
		appLog.Error("persist intent failed", err, "op", op, "id", id)
		if base.OnError != nil {
			base.OnError(fmt.Errorf("%s %s: %w", op, id, err))
		}
	}
	refresh := func() {
		if err := v.Refresh(ctx); err != nil && base.OnError != nil {
			base.OnError(err)
		}
	}

	h.OnMoveIntent = func(i gesture.MoveIntent) {
		if _, err := m.UpdateEvent(ctx, i.ID, model.EventPatch{Start: &i.NewStart, End: &i.NewEnd}); err != nil {
			report("move", i.ID, err)
			return
		}
		appLog.Info("event moved", "id", i.ID, "start", i.NewStart, "end", i.NewEnd)
		refresh()
		if base.OnMoveIntent != nil {
			base.OnMoveIntent(i)
		}
	}
	h.OnResizeIntent = func(i gesture.ResizeIntent) {
		if _, err := m.UpdateEvent(ctx, i.ID, model.EventPatch{Start: &i.NewStart, End: &i.NewEnd}); err != nil {
			report("resize", i.ID, err)
			return
		}
		appLog.Info("event resized", "id", i.ID, "end", i.NewEnd)
		refresh()
		if base.OnResizeIntent != nil {
			base.OnResizeIntent(i)
		}
	}
	h.OnToggleIntent = func(i gesture.ToggleIntent) {
		if err := m.SetCompleted(ctx, i.ID, i.Completed); err != nil {
			report("toggle", i.ID, err)
			return
		}
		appLog.Info("event completion toggled", "id", i.ID, "completed", i.Completed)
		refresh()
		if base.OnToggleIntent != nil {
			base.OnToggleIntent(i)
		}
	}
	return h
}

// CreateFromDraft persists a draft returned by the authoring collaborator
// and refreshes the view.
func CreateFromDraft(ctx context.Context, v *View, m Mutator, draft model.EventDraft) (model.SourceEvent, error) {
	ev, err := m.CreateEvent(ctx, draft)
	if err != nil {
		return model.SourceEvent{}, fmt.Errorf("create event: %w", err)
	}
	return ev, v.Refresh(ctx)
}

// Delete removes a stored event and refreshes the view.
func Delete(ctx context.Context, v *View, m Mutator, id string) error {
	if err := m.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	return v.Refresh(ctx)
}
