package model

import "time"

// OccurrenceKind tags where an occurrence came from.
type OccurrenceKind string

const (
	KindEvent OccurrenceKind = "event"
	KindTask  OccurrenceKind = "task"
)

// Capabilities are the gestures an occurrence accepts. They are fixed when
// the occurrence is materialized and never re-derived at gesture sites.
type Capabilities struct {
	Draggable   bool `json:"draggable"`
	Resizable   bool `json:"resizable"`
	ContextMenu bool `json:"context_menu"`
}

// CapabilitiesFor computes capabilities for a kind/instance combination.
// Only base (non-generated) events are mutable.
func CapabilitiesFor(kind OccurrenceKind, recurringInstance bool) Capabilities {
	mutable := kind == KindEvent && !recurringInstance
	return Capabilities{
		Draggable:   mutable,
		Resizable:   mutable,
		ContextMenu: mutable,
	}
}

// Occurrence represents a single concrete, renderable calendar item
// (after recurrence expansion or task projection).
type Occurrence struct {
	// ID is the source id for base events and tasks, or
	// "<sourceID>-repeat-<n>" for generated instances.
	ID string `json:"id"`
	// SourceID always points at the stored event or task.
	SourceID string `json:"source_id"`

	Title string         `json:"title"`
	Kind  OccurrenceKind `json:"kind"`

	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`

	RecurringInstance bool `json:"recurring_instance"`
	Capabilities

	Color     string `json:"color,omitempty"`
	Completed bool   `json:"completed"`

	// Priority holds the event priority or the task priority letter.
	Priority string `json:"priority,omitempty"`
}

// FromEvent materializes the base occurrence of a stored event.
func FromEvent(ev SourceEvent) Occurrence {
	return Occurrence{
		ID:           ev.ID,
		SourceID:     ev.ID,
		Title:        ev.Title,
		Kind:         KindEvent,
		Start:        ev.Start,
		End:          ev.End,
		AllDay:       ev.AllDay,
		Capabilities: CapabilitiesFor(KindEvent, false),
		Color:        ev.Color,
		Completed:    ev.Completed,
		Priority:     string(ev.Priority),
	}
}

// FromTask projects a task onto the calendar. Tasks never expand and never
// accept gestures.
func FromTask(t TaskRef) Occurrence {
	return Occurrence{
		ID:           t.ID,
		SourceID:     t.ID,
		Title:        t.Title,
		Kind:         KindTask,
		Start:        t.Start,
		End:          t.End,
		Capabilities: CapabilitiesFor(KindTask, false),
		Color:        t.ProjectColor,
		Completed:    t.Completed,
		Priority:     string(t.Priority),
	}
}
