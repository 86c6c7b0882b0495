package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Frequency says how often a recurring template produces a transaction.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// ErrDayOutOfRange marks a day-of-recurrence outside the valid range for its
// frequency. Template creation rejects it so the scheduler never sees one.
var ErrDayOutOfRange = errors.New("day of recurrence out of range")

// RecurringTemplate is a factory for future transactions sharing one
// debit/credit pair and amount. DayOfRecurrence means: weekday (0 = Sunday)
// for weekly templates, day of month (1..31, clamped to short months) for
// monthly and yearly ones; daily templates ignore it. NextOccurrence and
// LastCreated advance together each time a due transaction is materialized,
// in one atomic step owned by the write path.
type RecurringTemplate struct {
	ID               string
	Amount           decimal.Decimal
	DebitAccountID   string
	CreditAccountID  string
	Note             string
	Frequency        Frequency
	DayOfRecurrence  int
	StartDate        Date
	EndDate          Date            // zero = open-ended
	NextOccurrence   Date
	LastCreated      Date            // zero = never materialized
	NotifyBeforeDays int             // 0 disables reminders
	Active           bool
}

// Validate checks the template invariants enforced at creation time.
func (t RecurringTemplate) Validate() error {
	if t.DebitAccountID == "" || t.CreditAccountID == "" {
		return fmt.Errorf("template must reference a debit and a credit account")
	}
	if t.DebitAccountID == t.CreditAccountID {
		return ErrSameAccount
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, t.Amount)
	}
	if !t.Frequency.Valid() {
		return fmt.Errorf("unknown frequency %q", t.Frequency)
	}
	if err := validateDayOfRecurrence(t.Frequency, t.DayOfRecurrence); err != nil {
		return err
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("template start date must be set")
	}
	if !t.EndDate.IsZero() && t.EndDate.Before(t.StartDate) {
		return fmt.Errorf("template end date %s is before start date %s", t.EndDate, t.StartDate)
	}
	if t.NotifyBeforeDays < 0 {
		return fmt.Errorf("notify-before days must not be negative, got %d", t.NotifyBeforeDays)
	}
	return nil
}

func validateDayOfRecurrence(f Frequency, day int) error {
	switch f {
	case FrequencyWeekly:
		if day < 0 || day > 6 {
			return fmt.Errorf("%w: weekday %d not in 0..6", ErrDayOutOfRange, day)
		}
	case FrequencyMonthly, FrequencyYearly:
		if day < 1 || day > 31 {
			return fmt.Errorf("%w: day of month %d not in 1..31", ErrDayOutOfRange, day)
		}
	}
	// Daily templates recur every day; the field carries no meaning.
	return nil
}
