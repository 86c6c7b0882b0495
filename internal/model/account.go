package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists all account types in their fixed reporting order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeIncome,
	AccountTypeExpense,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// TracksBalance reports whether accounts of this type carry a running
// balance. Income and expense accounts never do; their totals are always
// derived by summing transaction legs over a period.
func (t AccountType) TracksBalance() bool {
	return t == AccountTypeAsset || t == AccountTypeLiability
}

// BalanceDelta returns the signed balance effect of one transaction leg of
// the given amount on an account of this type. isDebit marks the
// transaction's debit leg.
func (t AccountType) BalanceDelta(amount decimal.Decimal, isDebit bool) decimal.Decimal {
	switch t {
	case AccountTypeAsset:
		if isDebit {
			return amount
		}
		return amount.Neg()
	case AccountTypeLiability:
		if isDebit {
			return amount.Neg()
		}
		return amount
	default:
		return decimal.Zero
	}
}

// Account is one entry in the chart of accounts. The two-level
// Category/SubCategory classification is orthogonal to Type. Accounts are
// soft-deactivated, never deleted, so historical transactions keep valid
// references; Type is fixed at creation.
type Account struct {
	ID             string
	Name           string
	Type           AccountType
	Category       string
	SubCategory    string
	OpeningBalance decimal.Decimal // meaningful only when Type.TracksBalance()
	Active         bool
}

// Validate checks the account invariants enforced at creation time.
func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("account name must not be empty")
	}
	if !a.Type.Valid() {
		return fmt.Errorf("unknown account type %q", a.Type)
	}
	if !a.Type.TracksBalance() && !a.OpeningBalance.IsZero() {
		return fmt.Errorf("%s account %q must not carry an opening balance", a.Type, a.Name)
	}
	return nil
}
