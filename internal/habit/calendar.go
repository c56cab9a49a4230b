package habit

import (
	"fmt"
	"strings"
	"time"
)

// All calendar arithmetic runs in a single fixed reference location so that
// two evaluations of the same inputs agree regardless of the host timezone
// or DST state.
var reference = time.UTC

const dayKeyLayout = "2006-01-02"

// Weekday uses the engine-wide numbering 1=Sunday … 7=Saturday.
type Weekday int

const (
	Sunday    Weekday = 1
	Monday    Weekday = 2
	Tuesday   Weekday = 3
	Wednesday Weekday = 4
	Thursday  Weekday = 5
	Friday    Weekday = 6
	Saturday  Weekday = 7
)

func (w Weekday) IsValid() bool {
	return w >= Sunday && w <= Saturday
}

func (w Weekday) String() string {
	names := [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	if !w.IsValid() {
		return fmt.Sprintf("weekday(%d)", int(w))
	}
	return names[w-1]
}

func ParseWeekday(input string) (Weekday, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	names := map[string]Weekday{
		"sun": Sunday, "sunday": Sunday,
		"mon": Monday, "monday": Monday,
		"tue": Tuesday, "tuesday": Tuesday,
		"wed": Wednesday, "wednesday": Wednesday,
		"thu": Thursday, "thursday": Thursday,
		"fri": Friday, "friday": Friday,
		"sat": Saturday, "saturday": Saturday,
	}
	w, ok := names[s]
	if !ok {
		return 0, fmt.Errorf("invalid weekday: %q", input)
	}
	return w, nil
}

// WeekdayOf returns the weekday of t in the reference calendar.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(int(t.In(reference).Weekday()) + 1)
}

// StartOfDay truncates t to midnight in the reference calendar.
func StartOfDay(t time.Time) time.Time {
	t = t.In(reference)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, reference)
}

// EndOfDay returns the last instant of t's day in the reference calendar.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// DayKey renders t as a canonical YYYY-MM-DD key. Keys are produced in the
// reference calendar only, never in a host-local or locale-dependent format.
func DayKey(t time.Time) string {
	return t.In(reference).Format(dayKeyLayout)
}

func ParseDayKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(dayKeyLayout, key, reference)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day key %q: %w", key, err)
	}
	return t, nil
}

// DaysBetween returns the whole-day distance from a's day to b's day.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	sa := StartOfDay(a)
	sb := StartOfDay(b)
	return int(sb.Sub(sa).Hours() / 24)
}

func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// Period is an inclusive day range. Start and End are both start-of-day
// instants in the reference calendar.
type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) Contains(t time.Time) bool {
	d := StartOfDay(t)
	return !d.Before(p.Start) && !d.After(p.End)
}

// LenDays returns the inclusive number of days in the period.
func (p Period) LenDays() int {
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns every day of the period in order.
func (p Period) Days() []time.Time {
	n := p.LenDays()
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, 0, n)
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// DayOf returns the single-day period containing t.
func DayOf(t time.Time) Period {
	d := StartOfDay(t)
	return Period{Start: d, End: d}
}

// WeekOf returns the week containing t. Weeks are anchored on Sunday to match
// the weekday numbering.
func WeekOf(t time.Time) Period {
	d := StartOfDay(t)
	back := int(WeekdayOf(d) - Sunday)
	start := d.AddDate(0, 0, -back)
	return Period{Start: start, End: start.AddDate(0, 0, 6)}
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Period {
	d := StartOfDay(t)
	start := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, reference)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}
