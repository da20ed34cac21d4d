package recurrence

import (
	"strconv"
	"strings"
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

const (
	// MaxGenerated caps generated instances per source event so that every
	// rule terminates, whatever its end date.
	MaxGenerated = 100

	// InstanceGlyph prefixes generated titles so they read differently from
	// the base occurrence.
	InstanceGlyph = "↻ "
	// InstanceInfix joins the source id and the instance number.
	InstanceInfix = "-repeat-"
)

// Result wraps the expanded occurrences and whether the cap was hit.
type Result struct {
	Occurrences []model.Occurrence
	Truncated   bool
}

// Expand materializes ev into its base occurrence followed by every
// generated instance. It never fails; worst case the base alone is returned.
func Expand(ev model.SourceEvent) []model.Occurrence {
	return ExpandWithReport(ev).Occurrences
}

// ExpandWithReport is Expand plus truncation reporting.
//
// Candidate dates are derived from the previously accepted date:
//
//   - daily:   +interval days
//   - weekly:  +7*interval days, or, with a weekday set, the first matching
//     weekday within the next 7*interval days (no match ends generation)
//   - monthly: +interval months (AddDate normalization, so day-of-month may roll over)
//   - yearly:  +interval years
//
// Generation stops once a candidate falls after the rule's end date.
func ExpandWithReport(ev model.SourceEvent) Result {
	base := model.FromEvent(ev)
	res := Result{Occurrences: []model.Occurrence{base}}

	rule := ev.Recurrence
	if rule == nil || rule.Kind == model.RecurrenceNone || rule.EndDate == nil {
		return res
	}

	limit := endOfDay(*rule.EndDate, ev.Start.Location())
	dur := ev.Duration()
	current := ev.Start

	for n := 1; ; n++ {
		if n > MaxGenerated {
			res.Truncated = true
			break
		}
		next, ok := nextCandidate(current, *rule)
		if !ok || next.After(limit) {
			break
		}

		res.Occurrences = append(res.Occurrences, instance(base, n, next, dur))
		current = next
	}

	// A rule whose very next candidate would also have been past the end is
	// not truncated even if it stopped exactly at the cap.
	if res.Truncated {
		if next, ok := nextCandidate(current, *rule); !ok || next.After(limit) {
			res.Truncated = false
		}
	}

	return res
}

// nextCandidate computes the date following current. ok is false when a
// weekly weekday search finds nothing in its window.
func nextCandidate(current time.Time, rule model.RecurrenceRule) (time.Time, bool) {
	step := rule.Step()

	switch rule.Kind {
	case model.RecurrenceDaily:
		return current.AddDate(0, 0, step), true
	case model.RecurrenceMonthly:
		return current.AddDate(0, step, 0), true
	case model.RecurrenceYearly:
		return current.AddDate(step, 0, 0), true
	case model.RecurrenceWeekly:
		if len(rule.Weekdays) == 0 {
			return current.AddDate(0, 0, 7*step), true
		}
		for i := 1; i <= 7*step; i++ {
			d := current.AddDate(0, 0, i)
			if rule.Weekdays.Contains(d.Weekday()) {
				return d, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func instance(base model.Occurrence, n int, start time.Time, dur time.Duration) model.Occurrence {
	o := base
	o.ID = base.SourceID + InstanceInfix + strconv.Itoa(n)
	o.Title = InstanceGlyph + base.Title
	o.Start = start
	o.End = start.Add(dur)
	o.RecurringInstance = true
	o.Capabilities = model.CapabilitiesFor(model.KindEvent, true)
	return o
}

// endOfDay returns the last instant of d's calendar date, read in loc.
func endOfDay(d time.Time, loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

// SourceOf splits a generated instance id into its source id. It reports
// false for ids that are not of the "<src>-repeat-<n>" form.
func SourceOf(id string) (string, bool) {
	i := strings.LastIndex(id, InstanceInfix)
	if i <= 0 {
		return "", false
	}
	n, err := strconv.Atoi(id[i+len(InstanceInfix):])
	if err != nil || n < 1 {
		return "", false
	}
	return id[:i], true
}
