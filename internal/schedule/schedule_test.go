package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func date(year int, month time.Month, day int) model.Date {
	return model.NewDate(year, month, day)
}

func TestNextOccurrenceDaily(t *testing.T) {
	got := NextOccurrence(model.FrequencyDaily, 0, date(2025, time.March, 14), model.Date{})
	assert.Equal(t, date(2025, time.March, 15), got)
}

func TestNextOccurrenceWeekly(t *testing.T) {
	// 2025-06-02 is a Monday.
	monday := date(2025, time.June, 2)

	tests := []struct {
		name string
		day  int
		want model.Date
	}{
		{"thursday later this week", 4, date(2025, time.June, 5)},
		{"sunday wraps to next week", 0, date(2025, time.June, 8)},
		{"same weekday means a full week", 1, date(2025, time.June, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(model.FrequencyWeekly, tt.day, monday, model.Date{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextOccurrenceWeeklyNeverReturnsBase(t *testing.T) {
	base := date(2025, time.June, 2)
	got := NextOccurrence(model.FrequencyWeekly, int(base.Weekday()), base, model.Date{})
	assert.Equal(t, base.AddDays(7), got)
}

func TestNextOccurrenceMonthly(t *testing.T) {
	tests := []struct {
		name string
		day  int
		base model.Date
		want model.Date
	}{
		{"plain advance", 15, date(2025, time.March, 15), date(2025, time.April, 15)},
		{"clamped to short february", 31, date(2025, time.January, 31), date(2025, time.February, 28)},
		{"clamped to leap february", 31, date(2024, time.January, 31), date(2024, time.February, 29)},
		{"unclamps after short month", 31, date(2025, time.February, 28), date(2025, time.March, 31)},
		{"december wraps the year", 10, date(2025, time.December, 10), date(2026, time.January, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(model.FrequencyMonthly, tt.day, tt.base, model.Date{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextOccurrenceYearly(t *testing.T) {
	tests := []struct {
		name string
		day  int
		base model.Date
		want model.Date
	}{
		{"plain advance", 4, date(2025, time.July, 4), date(2026, time.July, 4)},
		{"feb 29 clamps in non-leap year", 29, date(2024, time.February, 29), date(2025, time.February, 28)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(model.FrequencyYearly, tt.day, tt.base, model.Date{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextOccurrenceAdvancesFromLastCreated(t *testing.T) {
	base := date(2025, time.January, 1)
	lastCreated := date(2025, time.April, 1)

	got := NextOccurrence(model.FrequencyMonthly, 1, base, lastCreated)
	assert.Equal(t, date(2025, time.May, 1), got)

	// An earlier lastCreated never rolls the advance backwards.
	got = NextOccurrence(model.FrequencyMonthly, 1, lastCreated, base)
	assert.Equal(t, date(2025, time.May, 1), got)
}

func TestFirstOccurrenceOnOrAfter(t *testing.T) {
	tests := []struct {
		name      string
		frequency model.Frequency
		day       int
		from      model.Date
		want      model.Date
	}{
		{"daily starts immediately", model.FrequencyDaily, 0, date(2025, time.June, 2), date(2025, time.June, 2)},
		{"weekly on the matching weekday", model.FrequencyWeekly, 1, date(2025, time.June, 2), date(2025, time.June, 2)},
		{"weekly later in the week", model.FrequencyWeekly, 4, date(2025, time.June, 2), date(2025, time.June, 5)},
		{"monthly still ahead this month", model.FrequencyMonthly, 15, date(2025, time.March, 10), date(2025, time.March, 15)},
		{"monthly on the day itself", model.FrequencyMonthly, 15, date(2025, time.March, 15), date(2025, time.March, 15)},
		{"monthly already passed this month", model.FrequencyMonthly, 15, date(2025, time.March, 20), date(2025, time.April, 15)},
		{"monthly clamped to short month", model.FrequencyMonthly, 31, date(2025, time.February, 10), date(2025, time.February, 28)},
		{"yearly still ahead", model.FrequencyYearly, 4, date(2025, time.July, 1), date(2025, time.July, 4)},
		{"yearly already passed", model.FrequencyYearly, 4, date(2025, time.July, 10), date(2026, time.July, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstOccurrenceOnOrAfter(tt.frequency, tt.day, tt.from)
			assert.Equal(t, tt.want, got)
		})
	}
}

func dueTemplate(today model.Date) model.RecurringTemplate {
	return model.RecurringTemplate{
		ID:              "rt1",
		Amount:          decimal.NewFromInt(100),
		DebitAccountID:  "rent",
		CreditAccountID: "checking",
		Frequency:       model.FrequencyMonthly,
		DayOfRecurrence: today.Day(),
		StartDate:       today.AddDays(-60),
		NextOccurrence:  today,
		Active:          true,
	}
}

func TestShouldCreateToday(t *testing.T) {
	today := date(2025, time.May, 1)

	tests := []struct {
		name   string
		mutate func(*model.RecurringTemplate)
		want   bool
	}{
		{"due and active", func(*model.RecurringTemplate) {}, true},
		{"inactive", func(rt *model.RecurringTemplate) { rt.Active = false }, false},
		{"not yet due", func(rt *model.RecurringTemplate) { rt.NextOccurrence = today.AddDays(1) }, false},
		{"overdue occurrence is not today", func(rt *model.RecurringTemplate) { rt.NextOccurrence = today.AddDays(-1) }, false},
		{"before start date", func(rt *model.RecurringTemplate) { rt.StartDate = today.AddDays(5) }, false},
		{"after end date", func(rt *model.RecurringTemplate) { rt.EndDate = today.AddDays(-1) }, false},
		{"end date today still runs", func(rt *model.RecurringTemplate) { rt.EndDate = today }, true},
		{"already materialized today", func(rt *model.RecurringTemplate) { rt.LastCreated = today }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := dueTemplate(today)
			tt.mutate(&rt)
			assert.Equal(t, tt.want, ShouldCreateToday(rt, today))
		})
	}
}

func TestShouldCreateTodayIdempotentWithinDay(t *testing.T) {
	today := date(2025, time.May, 1)
	rt := dueTemplate(today)

	assert.True(t, ShouldCreateToday(rt, today))

	// The writer materializes the transaction and records the run.
	rt.LastCreated = today
	assert.False(t, ShouldCreateToday(rt, today))
}

func reminderTemplate(next model.Date, notifyBeforeDays int) model.RecurringTemplate {
	rt := dueTemplate(next)
	rt.NextOccurrence = next
	rt.NotifyBeforeDays = notifyBeforeDays
	return rt
}

func TestReminderAt(t *testing.T) {
	now := time.Date(2025, time.May, 1, 14, 0, 0, 0, time.Local)
	policy := DefaultReminderPolicy()

	t.Run("fires at the policy hour", func(t *testing.T) {
		rt := reminderTemplate(date(2025, time.May, 20), 3)
		fireAt, ok := ReminderAt(rt, now, policy)
		assert.True(t, ok)
		assert.Equal(t, time.Date(2025, time.May, 17, 9, 0, 0, 0, time.Local), fireAt)
	})

	t.Run("notifications disabled", func(t *testing.T) {
		rt := reminderTemplate(date(2025, time.May, 20), 0)
		_, ok := ReminderAt(rt, now, policy)
		assert.False(t, ok)
	})

	t.Run("inactive template", func(t *testing.T) {
		rt := reminderTemplate(date(2025, time.May, 20), 3)
		rt.Active = false
		_, ok := ReminderAt(rt, now, policy)
		assert.False(t, ok)
	})

	t.Run("occurrence inside safety horizon", func(t *testing.T) {
		rt := reminderTemplate(date(2025, time.May, 2), 3)
		_, ok := ReminderAt(rt, now, policy)
		assert.False(t, ok)
	})

	t.Run("reminder date already passed", func(t *testing.T) {
		rt := reminderTemplate(date(2025, time.May, 3), 3)
		_, ok := ReminderAt(rt, now, policy)
		assert.False(t, ok)
	})

	t.Run("reminder too close to now", func(t *testing.T) {
		// Fire would be 2025-05-02 09:00; with now at 08:30 the lead is
		// under the one hour minimum.
		rt := reminderTemplate(date(2025, time.May, 5), 3)
		closeNow := time.Date(2025, time.May, 2, 8, 30, 0, 0, time.Local)
		_, ok := ReminderAt(rt, closeNow, policy)
		assert.False(t, ok)
	})

	t.Run("reminder beyond the max horizon", func(t *testing.T) {
		rt := reminderTemplate(date(2027, time.May, 20), 3)
		_, ok := ReminderAt(rt, now, policy)
		assert.False(t, ok)
	})
}
