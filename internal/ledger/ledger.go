// Package ledger derives account balances by replaying the transaction log.
// Balances are never stored: every query re-derives from the opening balance
// and the full transaction list, so retroactive edits stay consistent.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// OpeningBalanceAt returns the account's balance just before instant: the
// opening balance plus the sign-rule delta of every transaction dated
// strictly before instant that references the account on either leg.
// Income and expense accounts never carry a balance and always return zero.
func OpeningBalanceAt(account model.Account, transactions []model.Transaction, instant time.Time) decimal.Decimal {
	return balanceAt(account, transactions, func(d time.Time) bool { return d.Before(instant) })
}

// ClosingBalanceAt is OpeningBalanceAt with an inclusive cutoff. Callers
// normalize instant to the end of the period's final day.
func ClosingBalanceAt(account model.Account, transactions []model.Transaction, instant time.Time) decimal.Decimal {
	return balanceAt(account, transactions, func(d time.Time) bool { return !d.After(instant) })
}

func balanceAt(account model.Account, transactions []model.Transaction, include func(time.Time) bool) decimal.Decimal {
	if !account.Type.TracksBalance() {
		return decimal.Zero
	}
	balance := account.OpeningBalance
	for _, tx := range transactions {
		if !include(tx.Date) {
			continue
		}
		switch account.ID {
		case tx.DebitAccountID:
			balance = balance.Add(account.Type.BalanceDelta(tx.Amount, true))
		case tx.CreditAccountID:
			balance = balance.Add(account.Type.BalanceDelta(tx.Amount, false))
		}
	}
	return balance
}
