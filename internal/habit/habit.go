package habit

import (
	"fmt"
	"strings"
	"time"
)

type Type string

const (
	TypeBuild Type = "build"
	TypeQuit  Type = "quit"
)

func (t Type) IsValid() bool {
	return t == TypeBuild || t == TypeQuit
}

func ParseType(input string) (Type, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	t := Type(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid habit type: %q", input)
	}
	return t, nil
}

type GoalPeriod string

const (
	GoalPerDay   GoalPeriod = "day"
	GoalPerWeek  GoalPeriod = "week"
	GoalPerMonth GoalPeriod = "month"
)

func (p GoalPeriod) IsValid() bool {
	switch p {
	case GoalPerDay, GoalPerWeek, GoalPerMonth:
		return true
	default:
		return false
	}
}

// Goal is the per-period target a habit counts toward, e.g. 8 glasses/day.
type Goal struct {
	Amount int
	Unit   string
	Period GoalPeriod
}

// Habit is an immutable snapshot for evaluation. Mutation goes through the
// service, which replaces whole snapshots; the evaluators only ever read.
type Habit struct {
	ID        string
	Name      string
	Type      Type
	Schedule  Schedule
	StartDate time.Time
	EndDate   *time.Time
	Goal      Goal
	// History maps canonical day keys to recorded progress (>= 0). It is the
	// sole source of truth for completion; no completed flag is stored
	// anywhere else.
	History map[string]int
}

// Progress returns the recorded progress for day, 0 when absent.
func (h *Habit) Progress(day time.Time) int {
	if h.History == nil {
		return 0
	}
	return h.History[DayKey(day)]
}

// CompletedOn reports whether the recorded progress for day reached the goal.
func (h *Habit) CompletedOn(day time.Time) bool {
	return h.Progress(day) >= h.GoalAmount()
}

// GoalAmount returns the per-day target, never less than 1.
func (h *Habit) GoalAmount() int {
	if h.Goal.Amount < 1 {
		return 1
	}
	return h.Goal.Amount
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ValidationError{Field: "name", Reason: "name is required"}
	}
	if !h.Type.IsValid() {
		return ValidationError{Field: "type", Reason: fmt.Sprintf("unknown type %q", h.Type)}
	}
	if err := h.Schedule.Validate(); err != nil {
		return err
	}
	if h.StartDate.IsZero() {
		return ValidationError{Field: "start_date", Reason: "start date is required"}
	}
	if h.EndDate != nil && h.EndDate.Before(h.StartDate) {
		return ValidationError{Field: "end_date", Reason: "end date before start date"}
	}
	if h.Goal.Amount < 0 {
		return ValidationError{Field: "goal", Reason: fmt.Sprintf("amount must be >= 0, got %d", h.Goal.Amount)}
	}
	if h.Goal.Period != "" && !h.Goal.Period.IsValid() {
		return ValidationError{Field: "goal", Reason: fmt.Sprintf("unknown period %q", h.Goal.Period)}
	}
	return nil
}

// Instance is a derived view of one habit occurrence on a date. It is never
// persisted; completion state is always read back from History.
type Instance struct {
	HabitID      string
	Name         string
	OriginalDate time.Time
	// CurrentDate is where the occurrence landed after floating-window
	// sliding. Equal to OriginalDate for fixed-pattern schedules.
	CurrentDate time.Time
	Progress    int
	GoalAmount  int
}

func (i Instance) Completed() bool {
	return i.Progress >= i.GoalAmount
}
