package habit

import (
	"fmt"
	"strings"
)

type ScheduleKind string

const (
	KindDaily         ScheduleKind = "daily"
	KindWeekdays      ScheduleKind = "weekdays"
	KindWeekends      ScheduleKind = "weekends"
	KindSingleWeekday ScheduleKind = "weekday"
	KindWeekdayList   ScheduleKind = "weekday_list"
	KindEveryNDays    ScheduleKind = "every_n_days"
	KindDaysPerWeek   ScheduleKind = "days_per_week"
	KindDaysPerMonth  ScheduleKind = "days_per_month"
	KindTimesPerWeek  ScheduleKind = "times_per_week"
)

func (k ScheduleKind) IsValid() bool {
	switch k {
	case KindDaily, KindWeekdays, KindWeekends, KindSingleWeekday, KindWeekdayList,
		KindEveryNDays, KindDaysPerWeek, KindDaysPerMonth, KindTimesPerWeek:
		return true
	default:
		return false
	}
}

// Floating reports whether the schedule is an N-per-period quota where the
// user, not the calendar, picks the days.
func (k ScheduleKind) Floating() bool {
	switch k {
	case KindDaysPerWeek, KindDaysPerMonth, KindTimesPerWeek:
		return true
	default:
		return false
	}
}

func ParseScheduleKind(input string) (ScheduleKind, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	k := ScheduleKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("invalid schedule kind: %q", input)
	}
	return k, nil
}

// Schedule is the closed recurrence variant. A schedule edit replaces the
// whole value; it is never mutated in place.
type Schedule struct {
	Kind     ScheduleKind
	Weekday  Weekday   // KindSingleWeekday
	Weekdays []Weekday // KindWeekdayList
	Every    int       // KindEveryNDays
	Count    int       // per-period quota for floating kinds
}

func Daily() Schedule                { return Schedule{Kind: KindDaily} }
func OnWeekdays() Schedule           { return Schedule{Kind: KindWeekdays} }
func OnWeekends() Schedule           { return Schedule{Kind: KindWeekends} }
func On(w Weekday) Schedule          { return Schedule{Kind: KindSingleWeekday, Weekday: w} }
func OnDays(ws ...Weekday) Schedule  { return Schedule{Kind: KindWeekdayList, Weekdays: ws} }
func EveryNDays(n int) Schedule      { return Schedule{Kind: KindEveryNDays, Every: n} }
func DaysPerWeek(n int) Schedule     { return Schedule{Kind: KindDaysPerWeek, Count: n} }
func DaysPerMonth(n int) Schedule    { return Schedule{Kind: KindDaysPerMonth, Count: n} }
func TimesPerWeek(n int) Schedule    { return Schedule{Kind: KindTimesPerWeek, Count: n} }

// Validate rejects malformed schedules at create/edit time so the evaluators
// never see them.
func (s Schedule) Validate() error {
	if !s.Kind.IsValid() {
		return ValidationError{Field: "schedule", Reason: fmt.Sprintf("unknown kind %q", s.Kind)}
	}
	switch s.Kind {
	case KindSingleWeekday:
		if !s.Weekday.IsValid() {
			return ValidationError{Field: "schedule", Reason: fmt.Sprintf("invalid weekday %d", s.Weekday)}
		}
	case KindWeekdayList:
		if len(s.Weekdays) == 0 {
			return ValidationError{Field: "schedule", Reason: "empty weekday list"}
		}
		for _, w := range s.Weekdays {
			if !w.IsValid() {
				return ValidationError{Field: "schedule", Reason: fmt.Sprintf("invalid weekday %d", w)}
			}
		}
	case KindEveryNDays:
		if s.Every < 1 {
			return ValidationError{Field: "schedule", Reason: fmt.Sprintf("interval must be >= 1, got %d", s.Every)}
		}
	case KindDaysPerWeek, KindDaysPerMonth, KindTimesPerWeek:
		if s.Count < 1 {
			return ValidationError{Field: "schedule", Reason: fmt.Sprintf("quota must be >= 1, got %d", s.Count)}
		}
	}
	return nil
}

// ContainsWeekday tests membership for the weekday-set kinds.
func (s Schedule) ContainsWeekday(w Weekday) bool {
	switch s.Kind {
	case KindDaily:
		return true
	case KindWeekdays:
		return w >= Monday && w <= Friday
	case KindWeekends:
		return w == Saturday || w == Sunday
	case KindSingleWeekday:
		return w == s.Weekday
	case KindWeekdayList:
		for _, d := range s.Weekdays {
			if d == w {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (s Schedule) String() string {
	switch s.Kind {
	case KindSingleWeekday:
		return fmt.Sprintf("every %s", s.Weekday)
	case KindWeekdayList:
		names := make([]string, 0, len(s.Weekdays))
		for _, w := range s.Weekdays {
			names = append(names, w.String())
		}
		return "on " + strings.Join(names, ",")
	case KindEveryNDays:
		return fmt.Sprintf("every %d days", s.Every)
	case KindDaysPerWeek:
		return fmt.Sprintf("%d days/week", s.Count)
	case KindDaysPerMonth:
		return fmt.Sprintf("%d days/month", s.Count)
	case KindTimesPerWeek:
		return fmt.Sprintf("%d times/week", s.Count)
	default:
		return string(s.Kind)
	}
}

// ValidationError reports a malformed habit or schedule at create/edit time.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
