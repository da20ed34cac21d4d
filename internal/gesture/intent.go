package gesture

import "time"

// MoveIntent asks the persistence layer to shift an event to a new day.
type MoveIntent struct {
	ID       string    `json:"id"`
	NewStart time.Time `json:"new_start"`
	NewEnd   time.Time `json:"new_end"`
}

// ResizeIntent asks the persistence layer to change an event's end.
// NewStart always equals the event's current start.
type ResizeIntent struct {
	ID       string    `json:"id"`
	NewStart time.Time `json:"new_start"`
	NewEnd   time.Time `json:"new_end"`
}

// ToggleIntent flips the completion flag of an event.
type ToggleIntent struct {
	ID        string `json:"id"`
	Completed bool   `json:"completed"`
}

// DaysBetween returns the whole calendar-day difference b - a, each read in
// its own location.
func DaysBetween(a, b time.Time) int {
	return civilDays(b) - civilDays(a)
}

func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// EndOfDay returns day's date at 23:59:59.999 in loc.
func EndOfDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

func sameDay(a, b time.Time) bool {
	return civilDays(a) == civilDays(b)
}
