package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAccountTypeValid(t *testing.T) {
	for _, at := range AccountTypes {
		assert.True(t, at.Valid(), "type %q", at)
	}
	assert.False(t, AccountType("equity").Valid())
	assert.False(t, AccountType("").Valid())
}

func TestAccountTypeTracksBalance(t *testing.T) {
	assert.True(t, AccountTypeAsset.TracksBalance())
	assert.True(t, AccountTypeLiability.TracksBalance())
	assert.False(t, AccountTypeIncome.TracksBalance())
	assert.False(t, AccountTypeExpense.TracksBalance())
}

func TestBalanceDelta(t *testing.T) {
	amount := dec("100")
	tests := []struct {
		accountType AccountType
		isDebit     bool
		want        string
	}{
		{AccountTypeAsset, true, "100"},
		{AccountTypeAsset, false, "-100"},
		{AccountTypeLiability, true, "-100"},
		{AccountTypeLiability, false, "100"},
		{AccountTypeIncome, true, "0"},
		{AccountTypeIncome, false, "0"},
		{AccountTypeExpense, true, "0"},
		{AccountTypeExpense, false, "0"},
	}
	for _, tt := range tests {
		got := tt.accountType.BalanceDelta(amount, tt.isDebit)
		assert.True(t, got.Equal(dec(tt.want)), "%s debit=%v: got %s", tt.accountType, tt.isDebit, got)
	}
}

func TestAccountValidate(t *testing.T) {
	valid := Account{
		ID:             "a1",
		Name:           "Checking",
		Type:           AccountTypeAsset,
		Category:       "cash",
		OpeningBalance: dec("250.00"),
		Active:         true,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Account)
		wantErr string
	}{
		{"empty name", func(a *Account) { a.Name = "" }, "name must not be empty"},
		{"unknown type", func(a *Account) { a.Type = "equity" }, "unknown account type"},
		{"income with opening balance", func(a *Account) {
			a.Type = AccountTypeIncome
			a.OpeningBalance = dec("10")
		}, "must not carry an opening balance"},
		{"expense with opening balance", func(a *Account) {
			a.Type = AccountTypeExpense
			a.OpeningBalance = dec("-10")
		}, "must not carry an opening balance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct := valid
			tt.mutate(&acct)
			err := acct.Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestAccountValidate_FlowAccountZeroOpening(t *testing.T) {
	acct := Account{ID: "i1", Name: "Salary", Type: AccountTypeIncome, Category: "job", Active: true}
	assert.NoError(t, acct.Validate())
}
