// Package schedule decides whether a habit occurs on a calendar date.
// Everything in here is pure: results depend only on the habit snapshot and
// the dates passed in, so callers may fan out evaluations concurrently.
package schedule

import (
	"time"

	"habitline/internal/habit"
)

// OccursOn reports whether a fixed-pattern habit occurs on date.
// Floating quota schedules are answered by IsScheduledFloating; for them (and
// for any unrecognized kind) OccursOn fails closed and returns false.
func OccursOn(h *habit.Habit, date time.Time) bool {
	if !WithinBounds(h, date) {
		return false
	}
	s := h.Schedule
	switch s.Kind {
	case habit.KindDaily, habit.KindWeekdays, habit.KindWeekends,
		habit.KindSingleWeekday, habit.KindWeekdayList:
		return s.ContainsWeekday(habit.WeekdayOf(date))
	case habit.KindEveryNDays:
		if s.Every < 1 {
			return false
		}
		diff := habit.DaysBetween(h.StartDate, date)
		return diff >= 0 && diff%s.Every == 0
	default:
		return false
	}
}

// WithinBounds checks the habit's start/end date bounds for date.
func WithinBounds(h *habit.Habit, date time.Time) bool {
	if date.Before(habit.StartOfDay(h.StartDate)) {
		return false
	}
	if h.EndDate != nil && date.After(habit.EndOfDay(*h.EndDate)) {
		return false
	}
	return true
}

// IsScheduled is the combined entry point: floating kinds go through the
// sliding window, everything else through OccursOn.
func IsScheduled(h *habit.Habit, date, today time.Time) bool {
	if h.Schedule.Kind.Floating() {
		return IsScheduledFloating(h, date, today)
	}
	return OccursOn(h, date)
}
