// Package grid builds the six-week month matrix the calendar renders.
package grid

import (
	"time"

	"github.com/bssong66/PerformanceTracker-sub000/internal/model"
)

const (
	// Cells is the fixed size of a month grid: six weeks of seven days.
	Cells = 42
	// VisibleCap is the number of occurrences shown directly in a cell.
	VisibleCap = 3
)

// DayBucket is one grid cell.
type DayBucket struct {
	Date    time.Time `json:"date"`
	InMonth bool      `json:"in_month"`

	// Visible holds at most VisibleCap occurrences in input order.
	Visible []model.Occurrence `json:"visible"`
	// Hidden holds the rest, reachable through the "+N more" affordance.
	Hidden        []model.Occurrence `json:"hidden,omitempty"`
	OverflowCount int                `json:"overflow_count"`
}

// All returns every occurrence in the bucket, visible first.
func (b DayBucket) All() []model.Occurrence {
	out := make([]model.Occurrence, 0, len(b.Visible)+len(b.Hidden))
	out = append(out, b.Visible...)
	return append(out, b.Hidden...)
}

// Empty reports whether no occurrence starts on this day.
func (b DayBucket) Empty() bool {
	return len(b.Visible) == 0
}

// Build lays out the month containing monthRef as 42 day buckets starting
// on the Sunday on or before the 1st. Occurrences are bucketed by the
// calendar date of their start, read in monthRef's location.
func Build(monthRef time.Time, occurrences []model.Occurrence) []DayBucket {
	loc := monthRef.Location()
	first := FirstCell(monthRef)

	cells := make([]DayBucket, Cells)
	index := make(map[civilDate]int, Cells)
	for i := range cells {
		d := first.AddDate(0, 0, i)
		cells[i] = DayBucket{
			Date:    d,
			InMonth: d.Month() == monthRef.Month() && d.Year() == monthRef.Year(),
		}
		index[civil(d)] = i
	}

	for _, o := range occurrences {
		i, ok := index[civil(o.Start.In(loc))]
		if !ok {
			continue
		}
		b := &cells[i]
		if len(b.Visible) < VisibleCap {
			b.Visible = append(b.Visible, o)
			continue
		}
		b.Hidden = append(b.Hidden, o)
		b.OverflowCount++
	}

	return cells
}

// FirstCell returns midnight of the Sunday on or before the 1st of
// monthRef's month.
func FirstCell(monthRef time.Time) time.Time {
	first := MonthStart(monthRef)
	return first.AddDate(0, 0, -int(first.Weekday()))
}

// MonthStart returns midnight on the 1st of monthRef's month.
func MonthStart(monthRef time.Time) time.Time {
	return time.Date(monthRef.Year(), monthRef.Month(), 1, 0, 0, 0, 0, monthRef.Location())
}

// Range returns the half-open interval [first cell, day after last cell).
func Range(monthRef time.Time) (time.Time, time.Time) {
	first := FirstCell(monthRef)
	return first, first.AddDate(0, 0, Cells)
}

// Weeks splits the cells into rows of seven.
func Weeks(cells []DayBucket) [][]DayBucket {
	rows := make([][]DayBucket, 0, (len(cells)+6)/7)
	for i := 0; i < len(cells); i += 7 {
		end := i + 7
		if end > len(cells) {
			end = len(cells)
		}
		rows = append(rows, cells[i:end])
	}
	return rows
}

// Find returns the bucket whose date matches day.
func Find(cells []DayBucket, day time.Time) (DayBucket, bool) {
	want := civil(day)
	for _, c := range cells {
		if civil(c.Date) == want {
			return c, true
		}
	}
	return DayBucket{}, false
}

type civilDate struct {
	y int
	m time.Month
	d int
}

func civil(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}
