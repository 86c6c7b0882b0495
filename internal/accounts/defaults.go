package accounts

import (
	"github.com/google/uuid"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// DefaultChart returns the starter chart of accounts for a new book. IDs are
// generated fresh on each call; init persists them once.
func DefaultChart() []model.Account {
	chart := []model.Account{
		{Name: "Checking", Type: model.AccountTypeAsset, Category: "cash", SubCategory: "bank"},
		{Name: "Savings", Type: model.AccountTypeAsset, Category: "cash", SubCategory: "bank"},
		{Name: "Wallet", Type: model.AccountTypeAsset, Category: "cash", SubCategory: "physical"},
		{Name: "Credit Card", Type: model.AccountTypeLiability, Category: "credit", SubCategory: "cards"},
		{Name: "Salary", Type: model.AccountTypeIncome, Category: "job", SubCategory: "base"},
		{Name: "Interest", Type: model.AccountTypeIncome, Category: "savings", SubCategory: "interest"},
		{Name: "Groceries", Type: model.AccountTypeExpense, Category: "living", SubCategory: "groceries"},
		{Name: "Dining Out", Type: model.AccountTypeExpense, Category: "living", SubCategory: "dining"},
		{Name: "Rent", Type: model.AccountTypeExpense, Category: "housing", SubCategory: "rent"},
		{Name: "Utilities", Type: model.AccountTypeExpense, Category: "housing", SubCategory: "utilities"},
		{Name: "Transport", Type: model.AccountTypeExpense, Category: "transport", SubCategory: "fuel"},
		{Name: "Entertainment", Type: model.AccountTypeExpense, Category: "leisure", SubCategory: "fun"},
	}
	for i := range chart {
		chart[i].ID = uuid.NewString()
		chart[i].Active = true
	}
	return chart
}
