package schedule

import (
	"time"

	"habitline/internal/habit"
)

// IsScheduledFloating decides occurrence for the N-per-period quota schedules
// (days/week, days/month, times/week). The window slides forward from today so
// a missed day is absorbed by later days, but a date that already has recorded
// progress stays in scope forever. That rule is load-bearing: a recompute can
// never contradict history.
//
// Stateless given (habit, date, today); completion history is the only state
// carried between calls, so per-date invocations need no ordering.
func IsScheduledFloating(h *habit.Habit, date, today time.Time) bool {
	s := h.Schedule
	if !s.Kind.Floating() || s.Count < 1 {
		return false
	}
	if !WithinBounds(h, date) {
		return false
	}

	day := habit.StartOfDay(date)
	anchor := habit.StartOfDay(today)

	if h.Progress(day) > 0 {
		return true
	}
	if day.Before(anchor) {
		// Unfulfilled past days are not retroactively shown.
		return false
	}

	period := floatingPeriod(s.Kind, day)
	done := completionsInPeriod(h, period)
	remaining := s.Count - done
	if remaining <= 0 {
		return false
	}

	daysLeft := habit.DaysBetween(anchor, period.End) + 1
	if daysLeft < 0 {
		daysLeft = 0
	}
	show := remaining
	if daysLeft < show {
		show = daysLeft
	}

	offset := habit.DaysBetween(anchor, day)
	return offset >= 0 && offset < show
}

// floatingPeriod returns the quota period containing day: the calendar month
// for days/month, the Sunday-anchored week otherwise.
func floatingPeriod(kind habit.ScheduleKind, day time.Time) habit.Period {
	if kind == habit.KindDaysPerMonth {
		return habit.MonthOf(day)
	}
	return habit.WeekOf(day)
}

// completionsInPeriod counts days inside p with recorded progress > 0.
func completionsInPeriod(h *habit.Habit, p habit.Period) int {
	n := 0
	for key, progress := range h.History {
		if progress <= 0 {
			continue
		}
		day, err := habit.ParseDayKey(key)
		if err != nil {
			continue
		}
		if p.Contains(day) {
			n++
		}
	}
	return n
}
