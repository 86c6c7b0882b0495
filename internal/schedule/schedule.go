// Package schedule computes recurrence dates for recurring transaction
// templates and decides when reminders should fire. Everything here is pure:
// the caller supplies the clock and persists any advanced dates itself, in
// the same atomic step that materializes the due transaction.
package schedule

import (
	"time"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// NextOccurrence returns the occurrence after baseDate for the given rule.
// When lastCreated is set and later than baseDate, the advance starts from
// lastCreated instead, so a template that missed checks never re-derives an
// occurrence it already materialized. DayOfRecurrence range checks happen at
// template creation, not here.
func NextOccurrence(frequency model.Frequency, dayOfRecurrence int, baseDate, lastCreated model.Date) model.Date {
	base := baseDate
	if !lastCreated.IsZero() && lastCreated.After(base) {
		base = lastCreated
	}

	switch frequency {
	case model.FrequencyDaily:
		return base.AddDays(1)
	case model.FrequencyWeekly:
		delta := (dayOfRecurrence - int(base.Weekday()) + 7) % 7
		if delta == 0 {
			// Already on the target weekday: a full week out, never base itself.
			delta = 7
		}
		return base.AddDays(delta)
	case model.FrequencyMonthly:
		year, month := base.Year(), base.Month()+1
		if month > time.December {
			year, month = year+1, time.January
		}
		return model.NewDate(year, month, clampDay(dayOfRecurrence, year, month))
	case model.FrequencyYearly:
		year, month := base.Year()+1, base.Month()
		return model.NewDate(year, month, clampDay(dayOfRecurrence, year, month))
	}
	return base
}

// FirstOccurrenceOnOrAfter returns the initial occurrence for a new
// template: the earliest date matching the rule that is not before from.
// Unlike NextOccurrence it may return from itself, so a template created on
// its own recurrence day runs that same day. The month anchoring a yearly
// rule is from's month.
func FirstOccurrenceOnOrAfter(frequency model.Frequency, dayOfRecurrence int, from model.Date) model.Date {
	switch frequency {
	case model.FrequencyDaily:
		return from
	case model.FrequencyWeekly:
		delta := (dayOfRecurrence - int(from.Weekday()) + 7) % 7
		return from.AddDays(delta)
	case model.FrequencyMonthly:
		year, month := from.Year(), from.Month()
		candidate := model.NewDate(year, month, clampDay(dayOfRecurrence, year, month))
		if candidate.Before(from) {
			return NextOccurrence(frequency, dayOfRecurrence, from, model.Date{})
		}
		return candidate
	case model.FrequencyYearly:
		year, month := from.Year(), from.Month()
		candidate := model.NewDate(year, month, clampDay(dayOfRecurrence, year, month))
		if candidate.Before(from) {
			return NextOccurrence(frequency, dayOfRecurrence, from, model.Date{})
		}
		return candidate
	}
	return from
}

// clampDay pins a day-of-month to the last valid day of the target month,
// so "the 31st" lands on the 30th or 28th/29th where needed.
func clampDay(day int, year int, month time.Month) int {
	if last := model.DaysIn(year, month); day > last {
		return last
	}
	return day
}

// ShouldCreateToday reports whether a due transaction must be materialized
// for the template on the given day. The lastCreated check makes the answer
// idempotent within a day: once the writer records today as materialized,
// repeated checks return false.
func ShouldCreateToday(t model.RecurringTemplate, today model.Date) bool {
	if !t.Active {
		return false
	}
	if !today.Equal(t.NextOccurrence) {
		return false
	}
	if today.Before(t.StartDate) {
		return false
	}
	if !t.EndDate.IsZero() && today.After(t.EndDate) {
		return false
	}
	if !t.LastCreated.IsZero() && t.LastCreated.Equal(today) {
		return false
	}
	return true
}

// ReminderPolicy holds the guard bands around reminder scheduling. All four
// guards exist to avoid surprising fires: immediately after creating a
// template, seconds after scheduling, or so far out the delivery mechanism
// cannot hold them.
type ReminderPolicy struct {
	FireHour          int           // local hour of day reminders fire at
	OccurrenceHorizon time.Duration // occurrence must be at least this far away
	MinLead           time.Duration // reminder must be at least this far away
	MaxHorizon        time.Duration // reminder must be at most this far away
}

// DefaultReminderPolicy returns the stock guard bands: reminders fire at
// 09:00 local, never for occurrences inside the next 24 hours, never less
// than an hour out, never more than a year out.
func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		FireHour:          9,
		OccurrenceHorizon: 24 * time.Hour,
		MinLead:           time.Hour,
		MaxHorizon:        365 * 24 * time.Hour,
	}
}

// ReminderAt returns the instant an advance reminder for the template should
// fire, or false when no reminder should be scheduled. False is the normal
// outcome whenever a guard band triggers, not an error. There is no
// "due today" reminder; only advance reminders exist.
func ReminderAt(t model.RecurringTemplate, now time.Time, policy ReminderPolicy) (time.Time, bool) {
	if !t.Active || t.NotifyBeforeDays <= 0 || t.NextOccurrence.IsZero() {
		return time.Time{}, false
	}
	if t.NextOccurrence.StartOfDay().Sub(now) < policy.OccurrenceHorizon {
		return time.Time{}, false
	}

	day := t.NextOccurrence.AddDays(-t.NotifyBeforeDays)
	fireAt := time.Date(day.Year(), day.Month(), day.Day(), policy.FireHour, 0, 0, 0, time.Local)

	lead := fireAt.Sub(now)
	if lead <= 0 {
		return time.Time{}, false
	}
	if lead < policy.MinLead {
		return time.Time{}, false
	}
	if lead > policy.MaxHorizon {
		return time.Time{}, false
	}
	return fireAt, true
}
