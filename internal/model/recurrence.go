package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RecurrenceKind selects how the next candidate date is computed.
type RecurrenceKind string

const (
	RecurrenceNone    RecurrenceKind = "none"
	RecurrenceDaily   RecurrenceKind = "daily"
	RecurrenceWeekly  RecurrenceKind = "weekly"
	RecurrenceMonthly RecurrenceKind = "monthly"
	RecurrenceYearly  RecurrenceKind = "yearly"
)

// ParseRecurrenceKind maps a stored kind string onto a RecurrenceKind.
// Unknown values become RecurrenceNone.
func ParseRecurrenceKind(s string) RecurrenceKind {
	switch k := RecurrenceKind(strings.ToLower(strings.TrimSpace(s))); k {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return k
	default:
		return RecurrenceNone
	}
}

// RecurrenceRule is the repeat policy attached to a SourceEvent.
type RecurrenceRule struct {
	Kind     RecurrenceKind `json:"kind"`
	Interval int            `json:"interval"`
	// EndDate is a calendar date; occurrences on that day are still produced.
	EndDate *time.Time `json:"end_date,omitempty"`
	// Weekdays only matters for weekly rules.
	Weekdays WeekdaySet `json:"weekdays,omitempty"`
}

// Step returns the interval, treating anything below one as one.
func (r RecurrenceRule) Step() int {
	if r.Interval < 1 {
		return 1
	}
	return r.Interval
}

// WeekdaySet is a subset of {Sunday..Saturday}. It is persisted as text and
// tolerates malformed payloads by decoding them as the empty set.
type WeekdaySet []time.Weekday

// Contains reports whether d is a member of the set.
func (s WeekdaySet) Contains(d time.Weekday) bool {
	for _, w := range s {
		if w == d {
			return true
		}
	}
	return false
}

// String encodes the set as a JSON array of weekday numbers, e.g. "[1,3]".
func (s WeekdaySet) String() string {
	if len(s) == 0 {
		return ""
	}
	parts := make([]string, 0, len(s))
	for _, d := range s {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ParseWeekdays decodes a stored weekday set. Accepted forms are a JSON array
// ("[1,3]"), a JSON string holding such an array, or a comma list ("1,3").
// Anything unparseable yields an empty set; out-of-range numbers are dropped.
func ParseWeekdays(raw string) WeekdaySet {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}

	var nums []int
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &nums); err != nil {
			return nil
		}
	} else if strings.HasPrefix(raw, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return nil
		}
		return ParseWeekdays(inner)
	} else {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil
			}
			nums = append(nums, n)
		}
	}

	return normalizeWeekdays(nums)
}

func normalizeWeekdays(nums []int) WeekdaySet {
	seen := make(map[int]bool, len(nums))
	out := make(WeekdaySet, 0, len(nums))
	for _, n := range nums {
		if n < 0 || n > 6 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, time.Weekday(n))
	}
	if len(out) == 0 {
		return nil
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MarshalJSON writes the set as an array of numbers.
func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	nums := make([]int, 0, len(s))
	for _, d := range s {
		nums = append(nums, int(d))
	}
	return json.Marshal(nums)
}

// UnmarshalJSON never fails: malformed input becomes the empty set.
func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	*s = ParseWeekdays(string(data))
	return nil
}
