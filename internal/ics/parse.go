package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "github.com/bssong66/PerformanceTracker-sub000/internal/log"
	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

// ParsedEvent is the normalized representation of a VEVENT before it is
// turned into stored calendar events.
type ParsedEvent struct {
	UID string
	Seq int

	Summary     string
	Description string
	Location    string
	Color       string
	// Priority is the raw 0-9 PRIORITY value; 0 means undefined.
	Priority int

	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time // RECURRENCE-ID (if present) in event's own timezone
	IsOverride bool       // true if this VEVENT is an override for a recurring instance
}

// ParseICS parses a single ICS payload into a list of ParsedEvent.
// Floating and date-only values are read in loc. VEVENTs that cannot be
// parsed are logged and skipped.
func ParseICS(src Source, body []byte, loc *time.Location) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp, loc)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if seqProp := ve.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentProperty("COLOR")); p != nil {
		if c := strings.TrimSpace(p.Value); model.ValidColor(c) {
			out.Color = c
		} else {
			appLog.Debug("ignoring unsupported COLOR", "uid", out.UID, "color", c)
		}
	}
	if p := ve.GetProperty(ical.ComponentPropertyPriority); p != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(p.Value)); err == nil && n >= 0 && n <= 9 {
			out.Priority = n
		}
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	start, err := ve.GetStartAt()
	if err != nil {
		if start, err = parseICSTime(dtStart.Value, loc); err != nil {
			return out, err
		}
	}
	end, err := ve.GetEndAt()
	if err != nil {
		end = time.Time{}
		if p := ve.GetProperty(ical.ComponentPropertyDtEnd); p != nil {
			end, _ = parseICSTime(p.Value, loc)
		}
	}

	if out.AllDay {
		// Dates are civil days in the display zone, whatever zone the
		// library picked.
		start = civilDate(start, loc)
		if !end.IsZero() {
			end = civilDate(end, loc)
		}
		if end.IsZero() || !end.After(start) {
			end = start.AddDate(0, 0, 1)
		}
	} else {
		if !hasZone(dtStart) {
			start = reanchor(start, loc)
			if !end.IsZero() {
				end = reanchor(end, loc)
			}
		}
		if end.IsZero() || end.Before(start) {
			end = start
		}
	}
	out.Start = start.In(loc)
	out.End = end.In(loc)

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := parseICSTime(part, paramLocation(p, loc))
			if err != nil {
				continue
			}
			if out.AllDay {
				t = civilDate(t, loc)
			}
			out.ExDates = append(out.ExDates, t)
		}
	}

	if ridProp := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); ridProp != nil {
		if t, err := parseICSTime(ridProp.Value, paramLocation(ridProp, loc)); err == nil {
			if out.AllDay {
				t = civilDate(t, loc)
			}
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

// isDateValue reports VALUE=DATE or a date-only value.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// hasZone reports whether a date-time carries a TZID or a UTC suffix.
func hasZone(p *ical.IANAProperty) bool {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		return true
	}
	return strings.HasSuffix(p.Value, "Z")
}

// paramLocation resolves a TZID parameter, falling back to loc.
func paramLocation(p *ical.IANAProperty, loc *time.Location) *time.Location {
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		if l, err := time.LoadLocation(tzs[0]); err == nil {
			return l
		}
	}
	return loc
}

func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// reanchor keeps the wall clock of a floating time and moves it into loc.
func reanchor(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// parseICSTime parses a basic ICS date or date-time. Values without a UTC
// suffix are read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g., 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, loc)
	}
	return time.ParseInLocation("20060102", v, loc)
}
