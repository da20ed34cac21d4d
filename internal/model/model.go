package model

import "time"

// Priority is the user-assigned importance of a calendar event.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TaskPriority is the A/B/C ranking used by planner tasks.
type TaskPriority string

const (
	TaskPriorityA TaskPriority = "A"
	TaskPriorityB TaskPriority = "B"
	TaskPriorityC TaskPriority = "C"
)

// SourceEvent represents a user-authored calendar event before recurrence
// expansion. It is owned by the persistence layer; the calendar core only
// reads it and emits intents describing how it should change.
type SourceEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	// Start / End carry both date and clock time.
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`

	Priority  Priority `json:"priority"`
	Completed bool     `json:"completed"`

	// Color overrides the priority palette when non-empty.
	Color string `json:"color,omitempty"`

	// Recurrence is nil for one-off events.
	Recurrence *RecurrenceRule `json:"recurrence,omitempty"`
}

// Duration returns the event length that every generated instance keeps.
func (e SourceEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// IsRecurring reports whether the event carries an expandable rule.
func (e SourceEvent) IsRecurring() bool {
	return e.Recurrence != nil && e.Recurrence.Kind != RecurrenceNone && e.Recurrence.EndDate != nil
}

// TaskRef is a read-only projection of a planner task onto the calendar.
type TaskRef struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Start        time.Time    `json:"start"`
	End          time.Time    `json:"end"`
	Priority     TaskPriority `json:"priority"`
	ProjectColor string       `json:"project_color,omitempty"`
	Completed    bool         `json:"completed"`
}

// EventDraft seeds a new event from a slot selection. The authoring
// collaborator fills in the remaining fields before persisting it.
type EventDraft struct {
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Priority Priority  `json:"priority"`
}

// EventPatch describes a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title       *string         `json:"title,omitempty"`
	Description *string         `json:"description,omitempty"`
	Start       *time.Time      `json:"start,omitempty"`
	End         *time.Time      `json:"end,omitempty"`
	AllDay      *bool           `json:"all_day,omitempty"`
	Priority    *Priority       `json:"priority,omitempty"`
	Color       *string         `json:"color,omitempty"`
	Recurrence  *RecurrenceRule `json:"recurrence,omitempty"`
}

// Apply returns a copy of ev with the non-nil patch fields set.
func (p EventPatch) Apply(ev SourceEvent) SourceEvent {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Start != nil {
		ev.Start = *p.Start
	}
	if p.End != nil {
		ev.End = *p.End
	}
	if p.AllDay != nil {
		ev.AllDay = *p.AllDay
	}
	if p.Priority != nil {
		ev.Priority = *p.Priority
	}
	if p.Color != nil {
		ev.Color = *p.Color
	}
	if p.Recurrence != nil {
		if p.Recurrence.Kind == RecurrenceNone {
			ev.Recurrence = nil
		} else {
			r := *p.Recurrence
			ev.Recurrence = &r
		}
	}
	return ev
}
