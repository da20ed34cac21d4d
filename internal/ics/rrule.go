package ics

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
	"github.com/bssong66/PerformanceTracker-sub000/internal/recurrence"
)

var kindToFreq = map[model.RecurrenceKind]rrule.Frequency{
	model.RecurrenceDaily:   rrule.DAILY,
	model.RecurrenceWeekly:  rrule.WEEKLY,
	model.RecurrenceMonthly: rrule.MONTHLY,
	model.RecurrenceYearly:  rrule.YEARLY,
}

// rrule-go weekdays are Monday-first; time.Weekday is Sunday-first.
var toRRuleWeekday = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// RRuleFor renders the recurrence of ev as an RRULE value (without the
// "RRULE:" prefix). The end date becomes an UNTIL at the last instant of
// that day in the event's zone.
func RRuleFor(ev model.SourceEvent) (string, error) {
	if !ev.IsRecurring() {
		return "", fmt.Errorf("event %s does not recur", ev.ID)
	}
	r := ev.Recurrence
	freq, ok := kindToFreq[r.Kind]
	if !ok {
		return "", fmt.Errorf("event %s: unsupported recurrence %q", ev.ID, r.Kind)
	}

	y, m, d := r.EndDate.Date()
	until := time.Date(y, m, d, 23, 59, 59, 0, ev.Start.Location())

	opt := rrule.ROption{
		Freq:     freq,
		Interval: r.Step(),
		Until:    until.UTC(),
	}
	if r.Kind == model.RecurrenceWeekly {
		for _, wd := range r.Weekdays {
			opt.Byweekday = append(opt.Byweekday, toRRuleWeekday[wd])
		}
	}
	return opt.RRuleString(), nil
}

// RecurrenceFromRRule converts an RRULE into a RecurrenceRule when the
// calendar's own expansion of the result yields exactly the RRULE's
// instances. Open-ended rules, BY* parts other than a plain weekly BYDAY,
// and rule sets longer than the generation cap are reported as not
// convertible; callers materialize those instead.
func RecurrenceFromRRule(raw string, ev model.SourceEvent) (*model.RecurrenceRule, bool) {
	loc := ev.Start.Location()
	opt, err := rrule.StrToROptionInLocation(raw, loc)
	if err != nil {
		return nil, false
	}
	if opt.Until.IsZero() && opt.Count == 0 {
		return nil, false
	}
	if len(opt.Bysetpos)+len(opt.Bymonth)+len(opt.Bymonthday)+len(opt.Byyearday)+
		len(opt.Byweekno)+len(opt.Byhour)+len(opt.Byminute)+len(opt.Bysecond)+len(opt.Byeaster) > 0 {
		return nil, false
	}

	rule := &model.RecurrenceRule{Interval: opt.Interval}
	switch opt.Freq {
	case rrule.DAILY:
		rule.Kind = model.RecurrenceDaily
	case rrule.WEEKLY:
		rule.Kind = model.RecurrenceWeekly
	case rrule.MONTHLY:
		rule.Kind = model.RecurrenceMonthly
	case rrule.YEARLY:
		rule.Kind = model.RecurrenceYearly
	default:
		return nil, false
	}
	if rule.Interval < 1 {
		rule.Interval = 1
	}
	if len(opt.Byweekday) > 0 {
		if rule.Kind != model.RecurrenceWeekly {
			return nil, false
		}
		for i := range opt.Byweekday {
			if opt.Byweekday[i].N() != 0 {
				return nil, false
			}
			// MO=0 .. SU=6
			rule.Weekdays = append(rule.Weekdays, time.Weekday((opt.Byweekday[i].Day()+1)%7))
		}
		rule.Weekdays = model.ParseWeekdays(rule.Weekdays.String())
	}

	opt.Dtstart = ev.Start
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, false
	}
	want := r.All()
	if len(want) == 0 || len(want) > recurrence.MaxGenerated+1 {
		return nil, false
	}

	last := want[len(want)-1].In(loc)
	end := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)
	rule.EndDate = &end

	probe := ev
	probe.Recurrence = rule
	got := recurrence.Expand(probe)
	if len(got) != len(want) {
		return nil, false
	}
	for i := range got {
		if !got[i].Start.Equal(want[i]) {
			return nil, false
		}
	}
	return rule, true
}
