package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// CreateTemplate validates and inserts a recurring template. The caller
// supplies the first NextOccurrence; the store never computes schedule
// dates.
func (s *Store) CreateTemplate(ctx context.Context, t model.RecurringTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("validating template: %w", err)
	}
	if t.NextOccurrence.IsZero() {
		return fmt.Errorf("template next occurrence must be set")
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning write: %w", err)
	}
	defer dbTx.Rollback()

	if err := requireActive(ctx, dbTx, t.DebitAccountID); err != nil {
		return err
	}
	if err := requireActive(ctx, dbTx, t.CreditAccountID); err != nil {
		return err
	}

	_, err = dbTx.ExecContext(ctx, `
		INSERT INTO templates (id, amount, debit_account_id, credit_account_id, note, frequency,
			day_of_recurrence, start_date, end_date, next_occurrence, last_created, notify_before_days, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.String(), t.DebitAccountID, t.CreditAccountID, t.Note, string(t.Frequency),
		t.DayOfRecurrence, t.StartDate.String(), nullDate(t.EndDate), t.NextOccurrence.String(),
		nullDate(t.LastCreated), t.NotifyBeforeDays, t.Active)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return dbTx.Commit()
}

// Template returns one recurring template by ID.
func (s *Store) Template(ctx context.Context, id string) (model.RecurringTemplate, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, amount, debit_account_id, credit_account_id, note, frequency,
			day_of_recurrence, start_date, end_date, next_occurrence, last_created, notify_before_days, active
		FROM templates WHERE id = ?`, id)

	t, err := scanTemplate(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RecurringTemplate{}, fmt.Errorf("template %s: %w", id, ErrTemplateNotFound)
	}
	if err != nil {
		return model.RecurringTemplate{}, fmt.Errorf("reading template %s: %w", id, err)
	}
	return t, nil
}

// Templates returns all recurring templates ordered by next occurrence.
func (s *Store) Templates(ctx context.Context) ([]model.RecurringTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, amount, debit_account_id, credit_account_id, note, frequency,
			day_of_recurrence, start_date, end_date, next_occurrence, last_created, notify_before_days, active
		FROM templates ORDER BY next_occurrence, id`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var templates []model.RecurringTemplate
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// SetTemplateActive toggles a template. Deactivating stops materialization
// and reminder scheduling without touching its history.
func (s *Store) SetTemplateActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE templates SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("toggling template %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("toggling template %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", id, ErrTemplateNotFound)
	}
	return nil
}

// MaterializeTemplate appends the due transaction and advances the
// template's schedule in one database transaction. Materialize-then-advance
// being atomic is what keeps the daily idempotency guard correct across
// restarts and duplicate checks.
func (s *Store) MaterializeTemplate(ctx context.Context, templateID string, tx model.Transaction, next model.Date) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validating transaction: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning write: %w", err)
	}
	defer dbTx.Rollback()

	if err := requireActive(ctx, dbTx, tx.DebitAccountID); err != nil {
		return err
	}
	if err := requireActive(ctx, dbTx, tx.CreditAccountID); err != nil {
		return err
	}
	if err := insertTransaction(ctx, dbTx, tx); err != nil {
		return err
	}

	res, err := dbTx.ExecContext(ctx, `
		UPDATE templates SET next_occurrence = ?, last_created = ? WHERE id = ? AND active = 1`,
		next.String(), tx.Day().String(), templateID)
	if err != nil {
		return fmt.Errorf("advancing template %s: %w", templateID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advancing template %s: %w", templateID, err)
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", templateID, ErrTemplateNotFound)
	}
	return dbTx.Commit()
}

func scanTemplate(scan func(...any) error) (model.RecurringTemplate, error) {
	var t model.RecurringTemplate
	var amount, frequency, startDate string
	var endDate, lastCreated sql.NullString
	var nextOccurrence string
	if err := scan(&t.ID, &amount, &t.DebitAccountID, &t.CreditAccountID, &t.Note, &frequency,
		&t.DayOfRecurrence, &startDate, &endDate, &nextOccurrence, &lastCreated, &t.NotifyBeforeDays, &t.Active); err != nil {
		return model.RecurringTemplate{}, err
	}

	value, err := decimal.NewFromString(amount)
	if err != nil {
		return model.RecurringTemplate{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	t.Amount = value
	t.Frequency = model.Frequency(frequency)

	if t.StartDate, err = model.ParseDate(startDate); err != nil {
		return model.RecurringTemplate{}, err
	}
	if t.NextOccurrence, err = model.ParseDate(nextOccurrence); err != nil {
		return model.RecurringTemplate{}, err
	}
	if t.EndDate, err = parseNullDate(endDate); err != nil {
		return model.RecurringTemplate{}, err
	}
	if t.LastCreated, err = parseNullDate(lastCreated); err != nil {
		return model.RecurringTemplate{}, err
	}
	return t, nil
}

func nullDate(d model.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func parseNullDate(s sql.NullString) (model.Date, error) {
	if !s.Valid || s.String == "" {
		return model.Date{}, nil
	}
	return model.ParseDate(s.String)
}
