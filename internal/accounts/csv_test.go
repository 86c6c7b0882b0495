package accounts

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func TestCSVRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: "a1", Name: "Checking", Type: model.AccountTypeAsset, Category: "cash", SubCategory: "bank", OpeningBalance: decimal.RequireFromString("1250.75"), Active: true},
		{ID: "e1", Name: "Groceries", Type: model.AccountTypeExpense, Category: "living", SubCategory: "groceries", Active: false},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, accounts[0].ID, got[0].ID)
	assert.Equal(t, accounts[0].Name, got[0].Name)
	assert.Equal(t, accounts[0].Type, got[0].Type)
	assert.Equal(t, accounts[0].Category, got[0].Category)
	assert.Equal(t, accounts[0].SubCategory, got[0].SubCategory)
	assert.True(t, got[0].OpeningBalance.Equal(accounts[0].OpeningBalance))
	assert.True(t, got[0].Active)

	assert.Equal(t, accounts[1].ID, got[1].ID)
	assert.True(t, got[1].OpeningBalance.IsZero())
	assert.False(t, got[1].Active)
}

func TestUnmarshalAccountErrors(t *testing.T) {
	_, err := UnmarshalAccount([]string{"a1", "Checking", "asset"})
	assert.ErrorContains(t, err, "expected 7 fields")

	_, err = UnmarshalAccount([]string{"a1", "Checking", "asset", "cash", "bank", "not-a-number", "true"})
	assert.ErrorContains(t, err, "parsing opening_balance")

	_, err = UnmarshalAccount([]string{"a1", "Checking", "asset", "cash", "bank", "0", "maybe"})
	assert.ErrorContains(t, err, "parsing active")
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	require.NotEmpty(t, chart)

	names := make(map[string]bool)
	ids := make(map[string]bool)
	for _, acct := range chart {
		assert.NotEmpty(t, acct.Name, "account %s missing name", acct.ID)
		assert.True(t, acct.Type.Valid(), "account %q has bad type %q", acct.Name, acct.Type)
		assert.True(t, acct.Active, "account %q should start active", acct.Name)
		assert.NoError(t, acct.Validate())
		assert.False(t, ids[acct.ID], "duplicate id %s", acct.ID)
		ids[acct.ID] = true
		names[acct.Name] = true
	}
	assert.True(t, names["Checking"])
	assert.True(t, names["Salary"])
	assert.True(t, names["Groceries"])
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart()

	var buf bytes.Buffer
	err := WriteAccounts(&buf, chart)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(chart))

	for i := range chart {
		assert.Equal(t, chart[i].ID, got[i].ID)
		assert.Equal(t, chart[i].Name, got[i].Name)
		assert.Equal(t, chart[i].Type, got[i].Type)
		assert.Equal(t, chart[i].Category, got[i].Category)
		assert.Equal(t, chart[i].SubCategory, got[i].SubCategory)
	}
}
