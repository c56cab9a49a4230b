package engine

import (
	"context"
	"time"

	"habitline/internal/habit"
	"habitline/internal/schedule"
)

type ProgressResult struct {
	Habit    *habit.Habit
	Day      string
	Progress int
	GoalMet  bool
	TotalXP  int
	Level    int
	LevelUp  bool
}

// SetProgress records progress for one (habit, day) and triggers exactly one
// XP recompute. Mutations are serialized through the service lock, so rapid
// or concurrent toggles cannot lose updates or double-publish.
func (s *Service) SetProgress(ctx context.Context, ref string, date time.Time, amount int) (*ProgressResult, error) {
	if amount < 0 {
		return nil, habit.ValidationError{Field: "progress", Reason: "amount must be >= 0"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setProgressLocked(ctx, ref, date, amount)
}

// ToggleComplete flips a day between done and not-done: progress jumps to the
// goal amount, or back to zero when the goal was already met.
func (s *Service) ToggleComplete(ctx context.Context, ref string, date time.Time) (*ProgressResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.habits.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	amount := h.GoalAmount()
	if h.CompletedOn(date) {
		amount = 0
	}
	return s.setProgressLocked(ctx, h.ID, date, amount)
}

func (s *Service) setProgressLocked(ctx context.Context, ref string, date time.Time, amount int) (*ProgressResult, error) {
	h, err := s.habits.Find(ctx, ref)
	if err != nil {
		return nil, err
	}

	day := habit.DayKey(date)
	if err := s.completions.SetProgress(ctx, h.ID, day, amount); err != nil {
		return nil, err
	}
	if amount > 0 {
		h.History[day] = amount
	} else {
		delete(h.History, day)
	}

	s.bus.Publish(Event{Type: EventHabitChanged, Identity: s.identity, HabitID: h.ID, Day: day})

	levelBefore := 0
	if s.xp != nil {
		levelBefore = s.xp.CurrentLevel()
	}
	if err := s.recomputeLocked(ctx); err != nil {
		return nil, err
	}

	res := &ProgressResult{
		Habit:    h,
		Day:      day,
		Progress: amount,
		GoalMet:  amount >= h.GoalAmount(),
	}
	if s.xp != nil {
		snap := s.xp.Snapshot()
		res.TotalXP = snap.TotalXP
		res.Level = snap.Level
		res.LevelUp = snap.Level > levelBefore
	}
	return res, nil
}

// Recompute rebuilds the derived XP state from completion history alone. It is
// safe to call at any time; an apparently stuck score self-corrects here.
func (s *Service) Recompute(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked(ctx)
}

func (s *Service) recomputeLocked(ctx context.Context) error {
	if s.xp == nil {
		return nil
	}
	habits, err := s.habits.List(ctx)
	if err != nil {
		return err
	}
	count := CompletedDays(habits, time.Now())

	// Scope the publish to the identity so a switch-in-progress abandons it.
	publishCtx := ctx
	if s.identityCtx != nil {
		publishCtx = s.identityCtx
	}
	s.xp.PublishXP(publishCtx, count)
	return nil
}

// CompletedDays counts the days, from the earliest habit start through today,
// on which at least one habit was scheduled and every scheduled habit reached
// its goal. This count is the sole input to the XP derivation; the engine can
// always rebuild its state from history with this function.
func CompletedDays(habits []habit.Habit, today time.Time) int {
	if len(habits) == 0 {
		return 0
	}

	var earliest time.Time
	for i := range habits {
		d := habit.StartOfDay(habits[i].StartDate)
		if earliest.IsZero() || d.Before(earliest) {
			earliest = d
		}
	}

	end := habit.StartOfDay(today)
	count := 0
	for d := earliest; !d.After(end); d = d.AddDate(0, 0, 1) {
		scheduled := 0
		complete := true
		for i := range habits {
			h := &habits[i]
			if !schedule.IsScheduled(h, d, today) {
				continue
			}
			scheduled++
			if !h.CompletedOn(d) {
				complete = false
				break
			}
		}
		if scheduled > 0 && complete {
			count++
		}
	}
	return count
}

// InstancesOn assembles the derived per-date view for rendering: every habit
// scheduled on date, with progress read straight from history.
func (s *Service) InstancesOn(ctx context.Context, date, today time.Time) ([]habit.Instance, error) {
	habits, err := s.habits.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []habit.Instance
	for i := range habits {
		h := &habits[i]
		if !schedule.IsScheduled(h, date, today) {
			continue
		}
		inst := habit.Instance{
			HabitID:      h.ID,
			Name:         h.Name,
			OriginalDate: habit.StartOfDay(date),
			CurrentDate:  habit.StartOfDay(date),
			Progress:     h.Progress(date),
			GoalAmount:   h.GoalAmount(),
		}
		// Floating occurrences surface where the sliding window put them;
		// their original slot is the start of the quota period.
		if h.Schedule.Kind.Floating() {
			if h.Schedule.Kind == habit.KindDaysPerMonth {
				inst.OriginalDate = habit.MonthOf(date).Start
			} else {
				inst.OriginalDate = habit.WeekOf(date).Start
			}
		}
		out = append(out, inst)
	}
	return out, nil
}
