// Package progress computes completion ratios, habit rankings, and trends
// from habit snapshots. Like the schedule package it is pure and read-only.
package progress

import (
	"time"

	"habitline/internal/habit"
	"habitline/internal/schedule"
)

type Trend string

const (
	TrendImproving   Trend = "improving"
	TrendMaintaining Trend = "maintaining"
	TrendDeclining   Trend = "declining"
)

// trendThreshold is the dead band around "no change"; ratio moves within it
// count as maintaining.
const trendThreshold = 0.05

// TrendOf compares a current period ratio against the previous one.
func TrendOf(current, previous float64) Trend {
	switch {
	case current > previous+trendThreshold:
		return TrendImproving
	case current < previous-trendThreshold:
		return TrendDeclining
	default:
		return TrendMaintaining
	}
}

// DayCompletionRatio returns completed-and-scheduled over scheduled for date,
// 0 when nothing is scheduled.
func DayCompletionRatio(date, today time.Time, habits []habit.Habit) float64 {
	scheduled := 0
	completed := 0
	for i := range habits {
		h := &habits[i]
		if !schedule.IsScheduled(h, date, today) {
			continue
		}
		scheduled++
		if h.CompletedOn(date) {
			completed++
		}
	}
	if scheduled == 0 {
		return 0
	}
	return float64(completed) / float64(scheduled)
}

// PeriodCompletionRatio sums recorded progress over summed goal amounts across
// every scheduled (habit, day) pair in the period, clamped to [0, 1].
// A zero goal sum yields 0.0, never a division error or NaN.
func PeriodCompletionRatio(p habit.Period, today time.Time, habits []habit.Habit) float64 {
	var progressSum, goalSum int
	days := p.Days()
	for i := range habits {
		h := &habits[i]
		for _, d := range days {
			if !schedule.IsScheduled(h, d, today) {
				continue
			}
			goalSum += h.GoalAmount()
			progressSum += h.Progress(d)
		}
	}
	if goalSum == 0 {
		return 0
	}
	ratio := float64(progressSum) / float64(goalSum)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}

// habitRatio computes a single habit's period ratio (for rankings).
func habitRatio(h *habit.Habit, p habit.Period, today time.Time) float64 {
	return PeriodCompletionRatio(p, today, []habit.Habit{*h})
}

// TopPerforming returns the habit with the highest period ratio among those
// matching habitType (empty matches all). Ties keep the first habit in input
// order. ok is false when no habit matches.
func TopPerforming(p habit.Period, today time.Time, habits []habit.Habit, habitType habit.Type) (best *habit.Habit, ratio float64, ok bool) {
	for i := range habits {
		h := &habits[i]
		if habitType != "" && h.Type != habitType {
			continue
		}
		r := habitRatio(h, p, today)
		if !ok || r > ratio {
			best, ratio, ok = h, r, true
		}
	}
	return best, ratio, ok
}

// NeedsAttention is the arg-min counterpart of TopPerforming.
func NeedsAttention(p habit.Period, today time.Time, habits []habit.Habit, habitType habit.Type) (worst *habit.Habit, ratio float64, ok bool) {
	for i := range habits {
		h := &habits[i]
		if habitType != "" && h.Type != habitType {
			continue
		}
		r := habitRatio(h, p, today)
		if !ok || r < ratio {
			worst, ratio, ok = h, r, true
		}
	}
	return worst, ratio, ok
}
