// Package recurring materializes due transactions from recurring templates
// and schedules advance reminders for upcoming occurrences. It orchestrates;
// the schedule rules stay pure and the store owns atomicity.
package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/notify"
	"github.com/tallybook-dev/tallybook/internal/schedule"
)

// TemplateSource lists the recurring templates to sweep.
type TemplateSource interface {
	Templates(ctx context.Context) ([]model.RecurringTemplate, error)
}

// TransactionWriter appends a materialized transaction and advances its
// template in one atomic write.
type TransactionWriter interface {
	MaterializeTemplate(ctx context.Context, templateID string, tx model.Transaction, next model.Date) error
}

// AuditFunc records an audit trail entry for an automated write.
type AuditFunc func(e auditlog.Entry) error

// Result summarizes one processing sweep.
type Result struct {
	Checked   int
	Created   int
	Reminders int
}

// Processor runs the recurring-template sweep. Policy, NewID, and Audit may
// be overridden after construction; zero values mean the defaults.
type Processor struct {
	Policy schedule.ReminderPolicy
	NewID  func() string
	Audit  AuditFunc

	templates TemplateSource
	writer    TransactionWriter
	reminders notify.Scheduler
	log       zerolog.Logger
}

// NewProcessor wires a processor with the default reminder policy and
// UUID transaction IDs. reminders may be nil to skip reminder scheduling.
func NewProcessor(templates TemplateSource, writer TransactionWriter, reminders notify.Scheduler, log zerolog.Logger) *Processor {
	return &Processor{
		Policy:    schedule.DefaultReminderPolicy(),
		NewID:     uuid.NewString,
		templates: templates,
		writer:    writer,
		reminders: reminders,
		log:       log,
	}
}

// ProcessDue sweeps all templates once: every template due on now's calendar
// day gets its transaction materialized and its schedule advanced, then a
// reminder for the new next occurrence is scheduled. Each occurrence's
// reminder is scheduled exactly once, at the moment the previous occurrence
// materializes. Per-template failures are logged and skipped; the sweep
// never aborts on one bad template.
func (p *Processor) ProcessDue(ctx context.Context, now time.Time) (Result, error) {
	today := model.DateOf(now)

	templates, err := p.templates.Templates(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("listing templates: %w", err)
	}

	result := Result{Checked: len(templates)}
	p.log.Info().
		Int("templates", len(templates)).
		Stringer("day", today).
		Msg("processing recurring templates")

	for _, t := range templates {
		if !schedule.ShouldCreateToday(t, today) {
			continue
		}

		next, err := p.materialize(ctx, t, now)
		if err != nil {
			p.log.Error().Err(err).Str("template_id", t.ID).Msg("materializing due transaction")
			continue
		}
		result.Created++

		t.LastCreated = today
		t.NextOccurrence = next
		scheduled, err := p.ScheduleReminder(ctx, t, now)
		if err != nil {
			p.log.Error().Err(err).Str("template_id", t.ID).Msg("scheduling reminder")
			continue
		}
		if scheduled {
			result.Reminders++
		}
	}

	p.log.Info().
		Int("created", result.Created).
		Int("reminders", result.Reminders).
		Int("checked", result.Checked).
		Msg("recurring sweep complete")
	return result, nil
}

// materialize writes the due transaction and advances the template, returning
// the new next occurrence.
func (p *Processor) materialize(ctx context.Context, t model.RecurringTemplate, now time.Time) (model.Date, error) {
	tx := model.Transaction{
		ID:              p.NewID(),
		Date:            now,
		Amount:          t.Amount,
		DebitAccountID:  t.DebitAccountID,
		CreditAccountID: t.CreditAccountID,
		Note:            t.Note,
	}
	next := schedule.NextOccurrence(t.Frequency, t.DayOfRecurrence, t.NextOccurrence, t.LastCreated)

	if err := p.writer.MaterializeTemplate(ctx, t.ID, tx, next); err != nil {
		return model.Date{}, err
	}

	p.log.Info().
		Str("template_id", t.ID).
		Str("transaction_id", tx.ID).
		Str("amount", t.Amount.String()).
		Stringer("next_occurrence", next).
		Msg("materialized recurring transaction")

	if p.Audit != nil {
		entry := auditlog.Entry{
			Timestamp:     now,
			Actor:         "recurring",
			Action:        "materialize_template",
			Details:       t.Note,
			TransactionID: tx.ID,
			TemplateID:    t.ID,
		}
		if err := p.Audit(entry); err != nil {
			// The transaction is already committed; the trail just has a gap.
			p.log.Error().Err(err).Str("template_id", t.ID).Msg("appending audit entry")
		}
	}
	return next, nil
}

// ScheduleReminder schedules the advance reminder for the template's next
// occurrence. It reports false without error when policy suppresses the
// reminder or no scheduler is configured.
func (p *Processor) ScheduleReminder(ctx context.Context, t model.RecurringTemplate, now time.Time) (bool, error) {
	if p.reminders == nil {
		return false, nil
	}
	fireAt, ok := schedule.ReminderAt(t, now, p.Policy)
	if !ok {
		return false, nil
	}
	if err := p.reminders.Schedule(ctx, notify.NewReminder(t, fireAt)); err != nil {
		return false, err
	}
	return true, nil
}
