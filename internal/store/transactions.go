package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// CreateTransaction validates the transaction and appends it to the log.
// Both account references must exist and be active at write time.
func (s *Store) CreateTransaction(ctx context.Context, tx model.Transaction) error {
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
	return dbTx.Commit()
}

// UpdateTransaction atomically replaces a logged transaction. Because
// balances are always re-derived from the log, replacing the row is exactly
// "reverse the old effect, apply the new one".
func (s *Store) UpdateTransaction(ctx context.Context, tx model.Transaction) error {
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

	res, err := dbTx.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, amount = ?, debit_account_id = ?, credit_account_id = ?, note = ?, tags = ?
		WHERE id = ?`,
		marshalInstant(tx.Date), tx.Amount.String(), tx.DebitAccountID, tx.CreditAccountID,
		tx.Note, strings.Join(tx.Tags, ";"), tx.ID)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", tx.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", tx.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrTransactionNotFound)
	}
	return dbTx.Commit()
}

// DeleteTransaction removes a transaction from the log. The next balance
// derivation simply no longer sees it.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrTransactionNotFound)
	}
	return nil
}

// Transactions returns the full log ordered by date.
func (s *Store) Transactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, amount, debit_account_id, credit_account_id, note, tags
		FROM transactions ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func insertTransaction(ctx context.Context, q *sql.Tx, tx model.Transaction) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO transactions (id, date, amount, debit_account_id, credit_account_id, note, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, marshalInstant(tx.Date), tx.Amount.String(), tx.DebitAccountID, tx.CreditAccountID,
		tx.Note, strings.Join(tx.Tags, ";"))
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

func scanTransaction(scan func(...any) error) (model.Transaction, error) {
	var tx model.Transaction
	var instant, amount, tags string
	if err := scan(&tx.ID, &instant, &amount, &tx.DebitAccountID, &tx.CreditAccountID, &tx.Note, &tags); err != nil {
		return model.Transaction{}, err
	}

	date, err := unmarshalInstant(instant)
	if err != nil {
		return model.Transaction{}, err
	}
	value, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}

	tx.Date = date
	tx.Amount = value
	if tags != "" {
		tx.Tags = strings.Split(tags, ";")
	}
	return tx, nil
}

// marshalInstant stores instants as UTC RFC 3339 so the date column sorts
// chronologically. unmarshalInstant converts back to local time, matching
// the local-calendar day semantics of the model.
func marshalInstant(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func unmarshalInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing instant %q: %w", s, err)
	}
	return t.In(time.Local), nil
}
