// Package notify delivers advance reminders for upcoming recurring
// transactions. The AMQP scheduler hands reminders to an external delivery
// service through a durable queue; the log scheduler is the fallback when no
// broker is configured. Actual user-facing delivery (push, mail) is the
// consumer's job, not ours.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Reminder is the payload scheduled for an upcoming recurring transaction.
// FireAt is when the consumer should surface it; DueDate is the occurrence
// the reminder points at.
type Reminder struct {
	TemplateID string    `json:"template_id"`
	Note       string    `json:"note"`
	Amount     string    `json:"amount"`
	DueDate    string    `json:"due_date"`
	FireAt     time.Time `json:"fire_at"`
}

// NewReminder builds the reminder payload for a template's next occurrence.
func NewReminder(t model.RecurringTemplate, fireAt time.Time) Reminder {
	return Reminder{
		TemplateID: t.ID,
		Note:       t.Note,
		Amount:     t.Amount.String(),
		DueDate:    t.NextOccurrence.String(),
		FireAt:     fireAt,
	}
}

// ToJSON converts the reminder to its wire form.
func (r Reminder) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ReminderFromJSON parses a reminder from its wire form.
func ReminderFromJSON(data []byte) (Reminder, error) {
	var r Reminder
	if err := json.Unmarshal(data, &r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// Scheduler is the reminder delivery boundary.
type Scheduler interface {
	Schedule(ctx context.Context, r Reminder) error
	Close() error
}

// LogScheduler writes reminders to the log instead of a broker. It keeps the
// processor loop identical whether or not AMQP is configured.
type LogScheduler struct {
	log zerolog.Logger
}

// NewLogScheduler returns a Scheduler that only logs.
func NewLogScheduler(log zerolog.Logger) *LogScheduler {
	return &LogScheduler{log: log}
}

// Schedule logs the reminder and reports success.
func (s *LogScheduler) Schedule(_ context.Context, r Reminder) error {
	s.log.Info().
		Str("template_id", r.TemplateID).
		Str("note", r.Note).
		Str("amount", r.Amount).
		Str("due_date", r.DueDate).
		Time("fire_at", r.FireAt).
		Msg("reminder scheduled (log only)")
	return nil
}

// Close implements Scheduler.
func (s *LogScheduler) Close() error { return nil }
