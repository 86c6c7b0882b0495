package recurring

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/notify"
	"github.com/tallybook-dev/tallybook/internal/store"
)

type fakeBook struct {
	templates []model.RecurringTemplate
	written   []model.Transaction
	advanced  map[string]model.Date
	failFor   map[string]error
}

func (f *fakeBook) Templates(context.Context) ([]model.RecurringTemplate, error) {
	return f.templates, nil
}

func (f *fakeBook) MaterializeTemplate(_ context.Context, templateID string, tx model.Transaction, next model.Date) error {
	if err := f.failFor[templateID]; err != nil {
		return err
	}
	f.written = append(f.written, tx)
	if f.advanced == nil {
		f.advanced = make(map[string]model.Date)
	}
	f.advanced[templateID] = next
	for i := range f.templates {
		if f.templates[i].ID == templateID {
			f.templates[i].NextOccurrence = next
			f.templates[i].LastCreated = tx.Day()
		}
	}
	return nil
}

type fakeScheduler struct {
	scheduled []notify.Reminder
	err       error
}

func (f *fakeScheduler) Schedule(_ context.Context, r notify.Reminder) error {
	if f.err != nil {
		return f.err
	}
	f.scheduled = append(f.scheduled, r)
	return nil
}

func (f *fakeScheduler) Close() error { return nil }

func monthlyTemplate(id string, next model.Date) model.RecurringTemplate {
	return model.RecurringTemplate{
		ID:              id,
		Amount:          decimal.RequireFromString("1200"),
		DebitAccountID:  "rent",
		CreditAccountID: "chk",
		Note:            "monthly rent",
		Frequency:       model.FrequencyMonthly,
		DayOfRecurrence: next.Day(),
		StartDate:       next.AddDays(-90),
		NextOccurrence:  next,
		Active:          true,
	}
}

func newTestProcessor(book *fakeBook, scheduler notify.Scheduler) *Processor {
	p := NewProcessor(book, book, scheduler, zerolog.Nop())
	n := 0
	p.NewID = func() string {
		n++
		return fmt.Sprintf("tx%d", n)
	}
	return p
}

func TestProcessDueMaterializesDueTemplates(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.Local)
	today := model.DateOf(now)

	book := &fakeBook{templates: []model.RecurringTemplate{
		monthlyTemplate("due", today),
		monthlyTemplate("later", today.AddDays(1)),
	}}
	p := newTestProcessor(book, nil)

	result, err := p.ProcessDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Checked: 2, Created: 1}, result)

	require.Len(t, book.written, 1)
	tx := book.written[0]
	assert.Equal(t, "tx1", tx.ID)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("1200")))
	assert.Equal(t, "rent", tx.DebitAccountID)
	assert.Equal(t, "chk", tx.CreditAccountID)
	assert.Equal(t, "monthly rent", tx.Note)
	assert.Equal(t, today, tx.Day())

	assert.Equal(t, model.NewDate(2025, time.July, 1), book.advanced["due"])
}

func TestProcessDueSkipsFailedTemplate(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.Local)
	today := model.DateOf(now)

	book := &fakeBook{
		templates: []model.RecurringTemplate{
			monthlyTemplate("broken", today),
			monthlyTemplate("fine", today),
		},
		failFor: map[string]error{"broken": errors.New("account is deactivated")},
	}
	p := newTestProcessor(book, nil)

	result, err := p.ProcessDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Checked: 2, Created: 1}, result)

	require.Len(t, book.written, 1)
	assert.NotContains(t, book.advanced, "broken")
	assert.Contains(t, book.advanced, "fine")
}

func TestProcessDueSchedulesReminderForNewOccurrence(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.Local)
	today := model.DateOf(now)

	rt := monthlyTemplate("due", today)
	rt.NotifyBeforeDays = 3
	book := &fakeBook{templates: []model.RecurringTemplate{rt}}
	scheduler := &fakeScheduler{}
	p := newTestProcessor(book, scheduler)

	result, err := p.ProcessDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Checked: 1, Created: 1, Reminders: 1}, result)

	require.Len(t, scheduler.scheduled, 1)
	r := scheduler.scheduled[0]
	assert.Equal(t, "due", r.TemplateID)
	assert.Equal(t, "2025-07-01", r.DueDate)
	assert.Equal(t, time.Date(2025, time.June, 28, 9, 0, 0, 0, time.Local), r.FireAt)
}

func TestProcessDueSuppressedReminderIsNotAnError(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.Local)
	today := model.DateOf(now)

	// Reminders disabled on the template itself.
	book := &fakeBook{templates: []model.RecurringTemplate{monthlyTemplate("due", today)}}
	scheduler := &fakeScheduler{}
	p := newTestProcessor(book, scheduler)

	result, err := p.ProcessDue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, Result{Checked: 1, Created: 1}, result)
	assert.Empty(t, scheduler.scheduled)
}

func TestProcessDueAuditTrail(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.Local)
	today := model.DateOf(now)

	book := &fakeBook{templates: []model.RecurringTemplate{monthlyTemplate("due", today)}}
	p := newTestProcessor(book, nil)

	var entries []auditlog.Entry
	p.Audit = func(e auditlog.Entry) error {
		entries = append(entries, e)
		return nil
	}

	_, err := p.ProcessDue(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "recurring", entries[0].Actor)
	assert.Equal(t, "materialize_template", entries[0].Action)
	assert.Equal(t, "due", entries[0].TemplateID)
	assert.Equal(t, book.written[0].ID, entries[0].TransactionID)
}

func TestProcessDueIdempotentAcrossSweeps(t *testing.T) {
	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.Local)
	today := model.DateOf(now)

	book := &fakeBook{templates: []model.RecurringTemplate{monthlyTemplate("due", today)}}
	p := newTestProcessor(book, nil)
	ctx := context.Background()

	first, err := p.ProcessDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	// Later the same day: the advanced template is no longer due.
	second, err := p.ProcessDue(ctx, now.Add(4*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, book.written, 1)
}

func TestProcessDueAgainstStore(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "tallybook.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	accounts := []model.Account{
		{ID: "chk", Name: "Checking", Type: model.AccountTypeAsset, Active: true},
		{ID: "rent", Name: "Rent", Type: model.AccountTypeExpense, Active: true},
	}
	for _, acct := range accounts {
		require.NoError(t, s.CreateAccount(ctx, acct))
	}

	now := time.Now()
	today := model.DateOf(now)
	rt := monthlyTemplate("rt1", today)
	require.NoError(t, s.CreateTemplate(ctx, rt))

	p := NewProcessor(s, s, nil, zerolog.Nop())

	result, err := p.ProcessDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	transactions, err := s.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, today, transactions[0].Day())

	advanced, err := s.Template(ctx, "rt1")
	require.NoError(t, err)
	assert.Equal(t, today, advanced.LastCreated)
	assert.True(t, advanced.NextOccurrence.After(today))

	// A second sweep the same day must not duplicate the transaction.
	result, err = p.ProcessDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)

	transactions, err = s.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, transactions, 1)
}
