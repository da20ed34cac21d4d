package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func baseEvent(rule *model.RecurrenceRule) model.SourceEvent {
	return model.SourceEvent{
		ID:         "ev1",
		Title:      "Standup",
		Start:      time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
		End:        time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		Priority:   model.PriorityMedium,
		Recurrence: rule,
	}
}

func TestExpandWithoutRuleReturnsBase(t *testing.T) {
	cases := map[string]*model.RecurrenceRule{
		"nil rule":    nil,
		"kind none":   {Kind: model.RecurrenceNone, Interval: 1, EndDate: date(2025, 2, 1)},
		"no end date": {Kind: model.RecurrenceDaily, Interval: 1},
	}
	for name, rule := range cases {
		t.Run(name, func(t *testing.T) {
			occ := Expand(baseEvent(rule))
			require.Len(t, occ, 1)
			assert.Equal(t, "ev1", occ[0].ID)
			assert.False(t, occ[0].RecurringInstance)
			assert.True(t, occ[0].Draggable)
			assert.True(t, occ[0].Resizable)
		})
	}
}

func TestExpandDailyInterval(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 2, EndDate: date(2025, 1, 7)})

	occ := Expand(ev)
	require.Len(t, occ, 4)

	wantDays := []int{1, 3, 5, 7}
	for i, o := range occ {
		assert.Equal(t, wantDays[i], o.Start.Day())
		assert.Equal(t, 9, o.Start.Hour())
		assert.Equal(t, 10, o.End.Hour())
	}
	assert.Equal(t, "ev1", occ[0].ID)
	assert.Equal(t, "ev1-repeat-1", occ[1].ID)
	assert.Equal(t, "ev1-repeat-3", occ[3].ID)
}

func TestExpandGeneratedInstancesAreImmutable(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 1, EndDate: date(2025, 1, 3)})

	occ := Expand(ev)
	require.Len(t, occ, 3)
	for _, o := range occ[1:] {
		assert.True(t, o.RecurringInstance)
		assert.False(t, o.Draggable)
		assert.False(t, o.Resizable)
		assert.False(t, o.ContextMenu)
		assert.Equal(t, InstanceGlyph+"Standup", o.Title)
		assert.Equal(t, "ev1", o.SourceID)
	}
}

func TestExpandWeeklyWeekdaySet(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{
		Kind:     model.RecurrenceWeekly,
		Interval: 1,
		EndDate:  date(2025, 1, 14),
		Weekdays: model.WeekdaySet{time.Monday, time.Wednesday},
	})

	occ := Expand(ev)
	require.Len(t, occ, 4)

	var got []string
	for _, o := range occ[1:] {
		wd := o.Start.Weekday()
		assert.True(t, wd == time.Monday || wd == time.Wednesday, "unexpected weekday %s", wd)
		assert.True(t, o.Start.After(ev.Start))
		got = append(got, o.Start.Format("2006-01-02"))
	}
	assert.Equal(t, []string{"2025-01-06", "2025-01-08", "2025-01-13"}, got)
}

func TestExpandWeeklyFixedStep(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceWeekly, Interval: 2, EndDate: date(2025, 2, 1)})

	occ := Expand(ev)
	require.Len(t, occ, 3)
	assert.Equal(t, "2025-01-15", occ[1].Start.Format("2006-01-02"))
	assert.Equal(t, "2025-01-29", occ[2].Start.Format("2006-01-02"))
}

func TestExpandWeeklyMalformedWeekdaysFallsBackToFixedStep(t *testing.T) {
	var set model.WeekdaySet
	require.NoError(t, set.UnmarshalJSON([]byte(`"not-a-list"`)))

	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceWeekly, Interval: 1, EndDate: date(2025, 1, 15), Weekdays: set})

	occ := Expand(ev)
	require.Len(t, occ, 3)
	assert.Equal(t, "2025-01-08", occ[1].Start.Format("2006-01-02"))
	assert.Equal(t, "2025-01-15", occ[2].Start.Format("2006-01-02"))
}

func TestExpandMonthlyRollsOver(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceMonthly, Interval: 1, EndDate: date(2025, 4, 30)})
	ev.Start = time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)
	ev.End = ev.Start.Add(time.Hour)

	occ := Expand(ev)
	require.Len(t, occ, 3)
	// Jan 31 + 1 month normalizes to Mar 3; the next step continues from there.
	assert.Equal(t, "2025-03-03", occ[1].Start.Format("2006-01-02"))
	assert.Equal(t, "2025-04-03", occ[2].Start.Format("2006-01-02"))
}

func TestExpandYearly(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceYearly, Interval: 1, EndDate: date(2027, 1, 1)})

	occ := Expand(ev)
	require.Len(t, occ, 3)
	assert.Equal(t, 2027, occ[2].Start.Year())
}

func TestExpandCapAndDuration(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 1, EndDate: date(2030, 1, 1)})
	ev.End = ev.Start.Add(95 * time.Minute)

	res := ExpandWithReport(ev)
	assert.True(t, res.Truncated)
	require.Len(t, res.Occurrences, MaxGenerated+1)
	for _, o := range res.Occurrences {
		assert.Equal(t, ev.Duration(), o.End.Sub(o.Start))
	}
}

func TestExpandExactlyAtCapIsNotTruncated(t *testing.T) {
	// 100 generated days after Jan 1 ends on Apr 11.
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 1, EndDate: date(2025, 4, 11)})

	res := ExpandWithReport(ev)
	assert.Len(t, res.Occurrences, MaxGenerated+1)
	assert.False(t, res.Truncated)
}

func TestExpandBoundForEveryKind(t *testing.T) {
	kinds := []model.RecurrenceKind{
		model.RecurrenceDaily, model.RecurrenceWeekly, model.RecurrenceMonthly, model.RecurrenceYearly,
	}
	for _, k := range kinds {
		for _, wd := range []model.WeekdaySet{nil, {time.Sunday}, {time.Tuesday, time.Friday}} {
			ev := baseEvent(&model.RecurrenceRule{Kind: k, Interval: 1, EndDate: date(2400, 1, 1), Weekdays: wd})
			assert.LessOrEqual(t, len(Expand(ev)), MaxGenerated+1, "kind %s", k)
		}
	}
}

func TestExpandZeroIntervalTreatedAsOne(t *testing.T) {
	ev := baseEvent(&model.RecurrenceRule{Kind: model.RecurrenceDaily, Interval: 0, EndDate: date(2025, 1, 3)})
	assert.Len(t, Expand(ev), 3)
}

func TestSourceOf(t *testing.T) {
	src, ok := SourceOf("a-b-repeat-12")
	assert.True(t, ok)
	assert.Equal(t, "a-b", src)

	for _, id := range []string{"plain", "-repeat-3", "x-repeat-", "x-repeat-0", "x-repeat-two"} {
		_, ok := SourceOf(id)
		assert.False(t, ok, id)
	}
}
