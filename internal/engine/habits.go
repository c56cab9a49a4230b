package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"habitline/internal/habit"
)

type CreateHabitInput struct {
	Name      string
	Type      habit.Type
	Schedule  habit.Schedule
	StartDate time.Time
	EndDate   *time.Time
	Goal      habit.Goal
}

func (s *Service) CreateHabit(ctx context.Context, in CreateHabitInput) (*habit.Habit, error) {
	h := &habit.Habit{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Schedule:  in.Schedule,
		StartDate: habit.StartOfDay(in.StartDate),
		EndDate:   in.EndDate,
		Goal:      in.Goal,
		History:   map[string]int{},
	}
	if h.Type == "" {
		h.Type = habit.TypeBuild
	}
	if in.StartDate.IsZero() {
		h.StartDate = habit.StartOfDay(time.Now())
	}
	if h.EndDate != nil {
		e := habit.StartOfDay(*h.EndDate)
		h.EndDate = &e
	}
	if h.Goal.Amount == 0 {
		h.Goal.Amount = 1
	}
	if h.Goal.Unit == "" {
		h.Goal.Unit = "count"
	}
	if h.Goal.Period == "" {
		h.Goal.Period = habit.GoalPerDay
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}

	if err := s.habits.Insert(ctx, h); err != nil {
		return nil, err
	}
	s.log.Info("habit created", zap.String("id", h.ID), zap.String("name", h.Name))
	s.bus.Publish(Event{Type: EventHabitChanged, Identity: s.Identity(), HabitID: h.ID})
	return h, nil
}

func (s *Service) Habits(ctx context.Context) ([]habit.Habit, error) {
	return s.habits.List(ctx)
}

func (s *Service) FindHabit(ctx context.Context, ref string) (*habit.Habit, error) {
	return s.habits.Find(ctx, ref)
}

// ReplaceSchedule swaps a habit's whole schedule and recomputes XP, since
// the edit may change which past days count as fully completed.
func (s *Service) ReplaceSchedule(ctx context.Context, ref string, sched habit.Schedule) (*habit.Habit, error) {
	if err := sched.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.habits.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.habits.ReplaceSchedule(ctx, h.ID, sched); err != nil {
		return nil, err
	}
	h.Schedule = sched

	s.bus.Publish(Event{Type: EventHabitChanged, Identity: s.identity, HabitID: h.ID})
	if err := s.recomputeLocked(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// DeleteHabit removes the habit, cascading its completion history, then
// recomputes XP against the remaining habits.
func (s *Service) DeleteHabit(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, err := s.habits.Find(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.habits.Delete(ctx, h.ID); err != nil {
		return err
	}
	s.log.Info("habit deleted", zap.String("id", h.ID), zap.String("name", h.Name))
	s.bus.Publish(Event{Type: EventHabitChanged, Identity: s.identity, HabitID: h.ID})
	return s.recomputeLocked(ctx)
}
