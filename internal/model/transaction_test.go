package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 10, 30, 0, 0, time.Local)
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		ID:              "t1",
		Date:            ts(2025, time.March, 5),
		Amount:          dec("42.50"),
		DebitAccountID:  "groceries",
		CreditAccountID: "checking",
		Note:            "weekly shop",
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   error
	}{
		{"same account both legs", func(tx *Transaction) { tx.CreditAccountID = "groceries" }, ErrSameAccount},
		{"zero amount", func(tx *Transaction) { tx.Amount = dec("0") }, ErrNonPositiveAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = dec("-5") }, ErrNonPositiveAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), tt.want)
		})
	}

	t.Run("missing debit account", func(t *testing.T) {
		tx := valid
		tx.DebitAccountID = ""
		assert.ErrorContains(t, tx.Validate(), "debit and a credit account")
	})
	t.Run("missing date", func(t *testing.T) {
		tx := valid
		tx.Date = time.Time{}
		assert.ErrorContains(t, tx.Validate(), "date must be set")
	})
}

func TestTransactionDay(t *testing.T) {
	tx := Transaction{Date: time.Date(2025, time.July, 9, 23, 59, 0, 0, time.Local)}
	assert.Equal(t, NewDate(2025, time.July, 9), tx.Day())
}

func TestTransactionReferences(t *testing.T) {
	tx := Transaction{DebitAccountID: "rent", CreditAccountID: "checking"}
	assert.True(t, tx.References("rent"))
	assert.True(t, tx.References("checking"))
	assert.False(t, tx.References("savings"))
}
