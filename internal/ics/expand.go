package ics

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

const defaultMaxOccurrencesPerEvent = 500

// ImportConfig controls how parsed VEVENTs become stored events.
type ImportConfig struct {
	// Location is the display zone; nil means time.Local.
	Location *time.Location

	// RangeStart / RangeEnd bound the window in which recurrences that the
	// calendar cannot express natively are materialized.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps materialized instances per UID.
	MaxOccurrencesPerEvent int
}

// ImportResult is the set of events a feed maps to.
type ImportResult struct {
	Events []model.SourceEvent
	// Materialized lists UIDs whose RRULE was expanded into one-off events.
	Materialized []string
	// TruncatedEvents lists UIDs that hit MaxOccurrencesPerEvent.
	TruncatedEvents []string
}

// ToSourceEvents maps the VEVENTs of one feed onto calendar events keyed
// "<source id>:<UID>". A recurring VEVENT whose RRULE converts exactly
// into a RecurrenceRule stays one recurring event. Anything else with an
// RRULE (EXDATEs, RECURRENCE-ID overrides, open-ended or BY* rules) is
// expanded inside the configured window into one-off events keyed
// "<source id>:<UID>:<instance start>".
func ToSourceEvents(src Source, events []ParsedEvent, cfg ImportConfig) (ImportResult, error) {
	var result ImportResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("import: RangeEnd is before RangeStart")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	uids := make([]string, 0, len(baseByUID))
	for uid := range baseByUID {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	for _, uid := range uids {
		ov := overridesByUID[uid]
		// The highest SEQUENCE wins when a feed repeats a UID.
		base := baseByUID[uid][0]
		for _, ev := range baseByUID[uid][1:] {
			if ev.Seq > base.Seq {
				base = ev
			}
		}

		if base.RawRRule == "" {
			result.Events = append(result.Events, single(src, base, ov))
			continue
		}
		if len(base.ExDates) == 0 && len(ov) == 0 {
			ev := toEvent(src, base, eventID(src, base.UID, ""), base.Start, base.End)
			if rule, ok := RecurrenceFromRRule(base.RawRRule, ev); ok {
				ev.Recurrence = rule
				result.Events = append(result.Events, ev)
				continue
			}
		}

		occ, hitCap, err := materialize(src, base, ov, cfg)
		if err != nil {
			appLog.Error("import: failed to expand RRULE", err, "uid", uid, "rrule", base.RawRRule)
			continue
		}
		result.Events = append(result.Events, occ...)
		result.Materialized = append(result.Materialized, uid)
		if hitCap {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("import: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	// Overrides whose series is missing from the feed are plain events.
	for uid, ovs := range overridesByUID {
		if _, ok := baseByUID[uid]; ok {
			continue
		}
		for _, o := range ovs {
			result.Events = append(result.Events, toEvent(src, o, eventID(src, o.UID, instanceKey(*o.Recurrence)), o.Start, o.End))
		}
	}

	sort.SliceStable(result.Events, func(i, j int) bool {
		return result.Events[i].ID < result.Events[j].ID
	})
	return result, nil
}

func single(src Source, ev ParsedEvent, overrides []ParsedEvent) model.SourceEvent {
	if o, ok := findOverrideForStart(overrides, ev.Start); ok {
		return toEvent(src, o, eventID(src, ev.UID, ""), o.Start, o.End)
	}
	return toEvent(src, ev, eventID(src, ev.UID, ""), ev.Start, ev.End)
}

func materialize(src Source, ev ParsedEvent, overrides []ParsedEvent, cfg ImportConfig) ([]model.SourceEvent, bool, error) {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		return nil, false, err
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	loc := ev.Start.Location()
	starts := set.Between(cfg.RangeStart.In(loc), cfg.RangeEnd.In(loc), true)
	hitCap := false
	if len(starts) > cfg.MaxOccurrencesPerEvent {
		starts = starts[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	dur := ev.End.Sub(ev.Start)
	out := make([]model.SourceEvent, 0, len(starts))
	for _, start := range starts {
		end := start.Add(dur)
		if ev.AllDay {
			start = civilDate(start, cfg.Location)
			end = start.AddDate(0, 0, 1)
		}
		id := eventID(src, ev.UID, instanceKey(start))

		if o, ok := findOverrideForStart(overrides, start); ok {
			out = append(out, toEvent(src, o, id, o.Start, o.End))
			continue
		}
		out = append(out, toEvent(src, ev, id, start, end))
	}
	return out, hitCap, nil
}

// findOverrideForStart finds the override whose RECURRENCE-ID equals start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func toEvent(src Source, ev ParsedEvent, id string, start, end time.Time) model.SourceEvent {
	title := strings.TrimSpace(ev.Summary)
	if title == "" {
		title = "(no title)"
	}
	desc := ev.Description
	if ev.Location != "" {
		if desc != "" {
			desc += "\n\n"
		}
		desc += "Location: " + ev.Location
	}
	return model.SourceEvent{
		ID:          id,
		Title:       title,
		Description: desc,
		Start:       start,
		End:         end,
		AllDay:      ev.AllDay,
		Priority:    priorityFor(ev.Priority, src.Priority),
		Color:       ev.Color,
	}
}

// priorityFor maps RFC 5545 PRIORITY (1 highest, 9 lowest, 0 undefined).
func priorityFor(p int, fallback model.Priority) model.Priority {
	switch {
	case p >= 1 && p <= 4:
		return model.PriorityHigh
	case p == 5:
		return model.PriorityMedium
	case p >= 6:
		return model.PriorityLow
	case fallback != "":
		return fallback
	default:
		return model.PriorityMedium
	}
}

func eventID(src Source, uid, instance string) string {
	id := src.ID + ":" + strings.ReplaceAll(uid, "/", "_")
	if instance != "" {
		id += ":" + instance
	}
	return id
}

func instanceKey(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
