package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for transaction invariant violations; the write boundary
// rejects these before anything reaches the ledger.
var (
	ErrSameAccount       = errors.New("debit and credit account must differ")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// Transaction is a single double-entry event: one debit leg and one credit
// leg of equal amount. Transactions may be edited or deleted after the fact;
// balances are always re-derived from the log, so a retroactive change is
// picked up by the next read without any invalidation step.
type Transaction struct {
	ID              string
	Date            time.Time
	Amount          decimal.Decimal
	DebitAccountID  string
	CreditAccountID string
	Note            string
	Tags            []string
}

// Day returns the calendar day the transaction falls on.
func (t Transaction) Day() Date {
	return DateOf(t.Date)
}

// References reports whether the transaction touches the given account on
// either leg.
func (t Transaction) References(accountID string) bool {
	return t.DebitAccountID == accountID || t.CreditAccountID == accountID
}

// Validate checks the transaction invariants enforced at creation time.
func (t Transaction) Validate() error {
	if t.DebitAccountID == "" || t.CreditAccountID == "" {
		return fmt.Errorf("transaction must reference a debit and a credit account")
	}
	if t.DebitAccountID == t.CreditAccountID {
		return ErrSameAccount
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrNonPositiveAmount, t.Amount)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("transaction date must be set")
	}
	return nil
}

// BankTransaction represents a parsed bank statement CSV row, before it is
// turned into a double-entry Transaction by the importer.
type BankTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	Reference   string
}
