package ics

import (
	"io"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

const productID = "-//lifecal//calendar//EN"

// completedProperty carries the completion flag, which VEVENT has no
// standard property for.
const completedProperty = ical.ComponentProperty("X-LIFECAL-COMPLETED")

// Export builds a VCALENDAR holding events. Recurring events keep their
// rule as an RRULE rather than being expanded.
func Export(name string, events []model.SourceEvent, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(now.UTC())
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.AllDay {
			ve.SetAllDayStartAt(ev.Start)
			end := ev.End
			if !end.After(ev.Start) {
				end = ev.Start.AddDate(0, 0, 1)
			}
			ve.SetAllDayEndAt(end)
		} else {
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
		}
		ve.SetProperty(ical.ComponentPropertyPriority, strconv.Itoa(icsPriority(ev.Priority)))
		if ev.Color != "" {
			ve.SetProperty(ical.ComponentProperty("COLOR"), ev.Color)
		}
		if ev.Completed {
			ve.SetProperty(completedProperty, "TRUE")
		}
		if ev.IsRecurring() {
			rule, err := RRuleFor(ev)
			if err != nil {
				appLog.Error("export: recurrence skipped", err, "id", ev.ID)
				continue
			}
			ve.AddProperty(ical.ComponentPropertyRrule, rule)
		}
	}
	return cal
}

// WriteCalendar serializes events as text/calendar to w.
func WriteCalendar(w io.Writer, name string, events []model.SourceEvent, now time.Time) error {
	_, err := io.WriteString(w, Export(name, events, now).Serialize())
	return err
}

func icsPriority(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return 1
	case model.PriorityLow:
		return 9
	default:
		return 5
	}
}
