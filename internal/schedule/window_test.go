package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"habitline/internal/habit"
)

func TestFloatingMonthlyWindowSlidesToEndOfMonth(t *testing.T) {
	// 31-day month, quota 3, nothing done yet, today = day 28:
	// 4 days remain, 3 needed, so days 28-30 are shown and 31 is not.
	h := newHabit(habit.DaysPerMonth(3), day(2026, time.January, 1))
	today := day(2026, time.March, 28)

	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 28), today))
	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 29), today))
	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 30), today))
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 31), today))
}

func TestFloatingCompletedDateAlwaysInScope(t *testing.T) {
	h := newHabit(habit.DaysPerMonth(3), day(2025, time.January, 1))
	h.History[habit.DayKey(day(2025, time.December, 5))] = 1

	// Three months outside the current window, still reported scheduled.
	today := day(2026, time.March, 28)
	assert.True(t, IsScheduledFloating(h, day(2025, time.December, 5), today))
}

func TestFloatingPastUnfulfilledDaysHidden(t *testing.T) {
	h := newHabit(habit.DaysPerMonth(3), day(2026, time.January, 1))
	today := day(2026, time.March, 28)
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 27), today))
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 1), today))
}

func TestFloatingQuotaSatisfiedHidesRemainingDays(t *testing.T) {
	// Week of 2026-03-01 (Sunday) through 2026-03-07.
	h := newHabit(habit.TimesPerWeek(2), day(2026, time.January, 1))
	h.History[habit.DayKey(day(2026, time.March, 2))] = 1
	h.History[habit.DayKey(day(2026, time.March, 3))] = 1

	today := day(2026, time.March, 4)
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 4), today))
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 5), today))
	// Completed days stay visible.
	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 2), today))
	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 3), today))
}

func TestFloatingWeeklyWindowAbsorbsMissedDays(t *testing.T) {
	// Quota 2/week, nothing done, today Wednesday: Wed and Thu are shown.
	h := newHabit(habit.TimesPerWeek(2), day(2026, time.January, 1))
	today := day(2026, time.March, 4)

	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 4), today))
	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 5), today))
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 6), today))

	// One completion shrinks the window to today only; the next day it
	// re-anchors on the new today.
	h.History[habit.DayKey(day(2026, time.March, 4))] = 1
	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 4), today))
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 5), today))

	tomorrow := day(2026, time.March, 5)
	assert.True(t, IsScheduledFloating(h, day(2026, time.March, 5), tomorrow))
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 6), tomorrow))
}

func TestFloatingRespectsDateBounds(t *testing.T) {
	end := day(2026, time.March, 10)
	h := newHabit(habit.DaysPerWeek(3), day(2026, time.March, 1))
	h.EndDate = &end

	assert.False(t, IsScheduledFloating(h, day(2026, time.February, 27), day(2026, time.February, 27)))
	assert.False(t, IsScheduledFloating(h, day(2026, time.March, 11), day(2026, time.March, 11)))
}

func TestFloatingWindowNeverShowsForZeroQuota(t *testing.T) {
	h := newHabit(habit.Schedule{Kind: habit.KindDaysPerWeek, Count: 0}, day(2026, time.January, 1))
	today := day(2026, time.March, 4)
	assert.False(t, IsScheduledFloating(h, today, today))
}
