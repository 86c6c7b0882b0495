package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// CreateAccount validates and inserts a new account.
func (s *Store) CreateAccount(ctx context.Context, acct model.Account) error {
	if err := acct.Validate(); err != nil {
		return fmt.Errorf("validating account: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, type, category, sub_category, opening_balance, active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Name, string(acct.Type), acct.Category, acct.SubCategory, acct.OpeningBalance.String(), acct.Active)
	if err != nil {
		return fmt.Errorf("inserting account: %w", err)
	}
	return nil
}

// Account returns one account by ID.
func (s *Store) Account(ctx context.Context, id string) (model.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, type, category, sub_category, opening_balance, active
		FROM accounts WHERE id = ?`, id)

	acct, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("reading account %s: %w", id, err)
	}
	return acct, nil
}

// Accounts returns the full chart of accounts, deactivated entries included,
// ordered by name.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, category, sub_category, opening_balance, active
		FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		acct, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// DeactivateAccount soft-deletes an account. Historical transactions keep
// their references; the account just stops accepting new legs.
func (s *Store) DeactivateAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivating account %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating account %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
	}
	return nil
}

func scanAccount(scan func(...any) error) (model.Account, error) {
	var acct model.Account
	var accountType, opening string
	if err := scan(&acct.ID, &acct.Name, &accountType, &acct.Category, &acct.SubCategory, &opening, &acct.Active); err != nil {
		return model.Account{}, err
	}
	balance, err := decimal.NewFromString(opening)
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing opening balance %q: %w", opening, err)
	}
	acct.Type = model.AccountType(accountType)
	acct.OpeningBalance = balance
	return acct, nil
}

// requireActive verifies inside a write transaction that the account exists
// and accepts new legs.
func requireActive(ctx context.Context, q *sql.Tx, id string) error {
	var active bool
	err := q.QueryRowContext(ctx, `SELECT active FROM accounts WHERE id = ?`, id).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("account %s: %w", id, ErrAccountNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking account %s: %w", id, err)
	}
	if !active {
		return fmt.Errorf("account %s: %w", id, ErrAccountInactive)
	}
	return nil
}
