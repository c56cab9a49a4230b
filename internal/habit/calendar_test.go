package habit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayNumbering(t *testing.T) {
	// 2026-01-04 is a Sunday; the engine numbers 1=Sunday .. 7=Saturday.
	sunday := time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		got := WeekdayOf(sunday.AddDate(0, 0, i))
		assert.Equal(t, Weekday(i+1), got)
	}
}

func TestDayKeyIsCalendarFixed(t *testing.T) {
	// The same instant keys identically no matter what zone it arrives in.
	almaty := time.FixedZone("UTC+5", 5*3600)
	instant := time.Date(2026, time.March, 10, 22, 30, 0, 0, almaty)

	assert.Equal(t, DayKey(instant.UTC()), DayKey(instant))
	assert.Equal(t, "2026-03-10", DayKey(instant))

	parsed, err := ParseDayKey("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, StartOfDay(instant), parsed)

	_, err = ParseDayKey("10/03/2026")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, time.March, 4, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysBetween(a, b))
	assert.Equal(t, -3, DaysBetween(b, a))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestPeriods(t *testing.T) {
	d := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC) // Wednesday

	week := WeekOf(d)
	assert.Equal(t, "2026-03-01", DayKey(week.Start)) // Sunday
	assert.Equal(t, "2026-03-07", DayKey(week.End))
	assert.Equal(t, 7, week.LenDays())

	month := MonthOf(d)
	assert.Equal(t, "2026-03-01", DayKey(month.Start))
	assert.Equal(t, "2026-03-31", DayKey(month.End))
	assert.Equal(t, 31, month.LenDays())

	assert.True(t, month.Contains(d))
	assert.False(t, month.Contains(d.AddDate(0, 1, 0)))
	assert.Len(t, week.Days(), 7)
}

func TestScheduleValidate(t *testing.T) {
	cases := []struct {
		name string
		s    Schedule
		ok   bool
	}{
		{"daily", Daily(), true},
		{"weekday list", OnDays(Monday, Thursday), true},
		{"every 3 days", EveryNDays(3), true},
		{"times per week", TimesPerWeek(2), true},
		{"zero interval", EveryNDays(0), false},
		{"zero quota", DaysPerMonth(0), false},
		{"empty list", Schedule{Kind: KindWeekdayList}, false},
		{"bad weekday", On(Weekday(9)), false},
		{"unknown kind", Schedule{Kind: "fortnightly"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.s.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				var verr ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestHabitValidate(t *testing.T) {
	end := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	h := Habit{
		Name:      "Read",
		Type:      TypeBuild,
		Schedule:  Daily(),
		StartDate: time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
		Goal:      Goal{Amount: 1},
	}
	assert.Error(t, h.Validate(), "end before start must be rejected")

	h.EndDate = nil
	assert.NoError(t, h.Validate())

	h.Name = "  "
	assert.Error(t, h.Validate())
}
