// Package report aggregates accounts and transactions into hierarchical
// period reports: account type, then category, then sub-category, each level
// carrying opening/closing balances and period flow. Aggregation never
// mutates its inputs and re-derives every balance through the ledger.
package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/model"
)

// GroupTotals are the accounting sums for one group of accounts over the
// report window. TotalDebits and TotalCredits sum the window's transaction
// amounts where the group owns the corresponding leg; TransactionCount
// counts distinct transactions touching the group on either leg.
type GroupTotals struct {
	OpeningBalance   decimal.Decimal
	ClosingBalance   decimal.Decimal
	TotalDebits      decimal.Decimal
	TotalCredits     decimal.Decimal
	NetChange        decimal.Decimal
	TransactionCount int
}

// SubCategoryReport is the leaf group: all accounts sharing one
// type/category/sub-category triple.
type SubCategoryReport struct {
	SubCategory string
	AccountIDs  []string
	GroupTotals
}

// CategoryReport groups the sub-categories of one parent category.
type CategoryReport struct {
	Category      string
	SubCategories []SubCategoryReport
	GroupTotals
}

// TypeReport groups the categories of one account type.
type TypeReport struct {
	Type       model.AccountType
	Categories []CategoryReport
	GroupTotals
}

// PeriodReport is the full report for one inclusive date window. Types
// appear in fixed order (asset, liability, income, expense), categories and
// sub-categories alphabetically, so equal inputs render identically.
type PeriodReport struct {
	Start               model.Date
	End                 model.Date
	Types               []TypeReport
	TotalOpeningBalance decimal.Decimal
	TotalClosingBalance decimal.Decimal
	TransactionCount    int
}

// NetChangeFunc derives a group's net change from its aggregates. The
// derivation sits behind a function type so it can be swapped without
// touching the aggregation itself.
type NetChangeFunc func(accountType model.AccountType, totals GroupTotals) decimal.Decimal

// NetChangeByAccountType is the default derivation, keyed on the group's
// account type: balance delta for asset and liability groups, oriented
// period flow for income and expense groups.
func NetChangeByAccountType(accountType model.AccountType, totals GroupTotals) decimal.Decimal {
	if accountType.TracksBalance() {
		return totals.ClosingBalance.Sub(totals.OpeningBalance)
	}
	return flowNet(accountType, totals)
}

// NetChangeByZeroBalance reproduces the historical derivation: any group
// with a non-zero opening or closing balance reports the balance delta, all
// others fall back to period flow. A balance-tracked group sitting at
// exactly zero on both ends therefore takes the flow branch; since flow
// equals the balance delta for such groups the number comes out the same,
// but the branch shape stays selectable.
func NetChangeByZeroBalance(_ model.AccountType, totals GroupTotals) decimal.Decimal {
	if !totals.OpeningBalance.IsZero() || !totals.ClosingBalance.IsZero() {
		return totals.ClosingBalance.Sub(totals.OpeningBalance)
	}
	return totals.TotalDebits.Sub(totals.TotalCredits)
}

// flowNet orients period flow so that growth of the account type reads
// positive: income grows by credits, expenses grow by debits.
func flowNet(accountType model.AccountType, totals GroupTotals) decimal.Decimal {
	if accountType == model.AccountTypeIncome {
		return totals.TotalCredits.Sub(totals.TotalDebits)
	}
	return totals.TotalDebits.Sub(totals.TotalCredits)
}

// Options narrows and tunes report generation. The zero value reports over
// every account with the default net-change derivation. Filters combine
// with AND; an empty filter slice means "no restriction".
type Options struct {
	Categories    []string
	SubCategories []string
	AccountIDs    []string
	NetChange     NetChangeFunc
}

func (o Options) narrowed() bool {
	return len(o.Categories) > 0 || len(o.SubCategories) > 0 || len(o.AccountIDs) > 0
}

// Generate builds the period report for the inclusive [start, end] window.
// Balances replay the complete transaction list so pre-window history is
// always reflected; the window only bounds period flow. Transactions
// referencing accounts absent from the account list stay out of every group
// but still count toward the report's window total.
func Generate(accounts []model.Account, transactions []model.Transaction, start, end model.Date, opts Options) PeriodReport {
	netChange := opts.NetChange
	if netChange == nil {
		netChange = NetChangeByAccountType
	}

	windowStart := start.StartOfDay()
	windowEnd := end.EndOfDay()

	included := filterAccounts(accounts, opts)
	includedIDs := make(map[string]bool, len(included))
	for _, a := range included {
		includedIDs[a.ID] = true
	}
	window := filterTransactions(transactions, windowStart, windowEnd, includedIDs, opts.narrowed())

	rep := PeriodReport{
		Start:               start,
		End:                 end,
		TotalOpeningBalance: decimal.Zero,
		TotalClosingBalance: decimal.Zero,
		TransactionCount:    len(window),
	}

	for _, accountType := range model.AccountTypes {
		var members []model.Account
		for _, a := range included {
			if a.Type == accountType {
				members = append(members, a)
			}
		}
		if len(members) == 0 {
			continue
		}

		tr := TypeReport{Type: accountType}
		categories, categoryNames := partition(members, func(a model.Account) string { return a.Category })
		for _, categoryName := range categoryNames {
			cr := CategoryReport{Category: categoryName}
			subCategories, subCategoryNames := partition(categories[categoryName], func(a model.Account) string { return a.SubCategory })
			for _, subCategoryName := range subCategoryNames {
				subMembers := subCategories[subCategoryName]
				sr := SubCategoryReport{
					SubCategory: subCategoryName,
					AccountIDs:  accountIDs(subMembers),
					GroupTotals: computeTotals(accountType, subMembers, transactions, window, windowStart, windowEnd, netChange),
				}
				cr.SubCategories = append(cr.SubCategories, sr)
			}
			cr.GroupTotals = computeTotals(accountType, categories[categoryName], transactions, window, windowStart, windowEnd, netChange)
			tr.Categories = append(tr.Categories, cr)
		}
		tr.GroupTotals = computeTotals(accountType, members, transactions, window, windowStart, windowEnd, netChange)

		rep.Types = append(rep.Types, tr)
		rep.TotalOpeningBalance = rep.TotalOpeningBalance.Add(tr.OpeningBalance)
		rep.TotalClosingBalance = rep.TotalClosingBalance.Add(tr.ClosingBalance)
	}
	return rep
}

// computeTotals derives one group's sums. Balances come from the full
// transaction list; flow and counts from the window's filtered slice.
func computeTotals(accountType model.AccountType, members []model.Account, all, window []model.Transaction, windowStart, windowEnd time.Time, netChange NetChangeFunc) GroupTotals {
	ids := make(map[string]bool, len(members))
	for _, a := range members {
		ids[a.ID] = true
	}

	totals := GroupTotals{
		OpeningBalance: decimal.Zero,
		ClosingBalance: decimal.Zero,
		TotalDebits:    decimal.Zero,
		TotalCredits:   decimal.Zero,
	}
	for _, a := range members {
		totals.OpeningBalance = totals.OpeningBalance.Add(ledger.OpeningBalanceAt(a, all, windowStart))
		totals.ClosingBalance = totals.ClosingBalance.Add(ledger.ClosingBalanceAt(a, all, windowEnd))
	}
	for _, tx := range window {
		touches := false
		if ids[tx.DebitAccountID] {
			totals.TotalDebits = totals.TotalDebits.Add(tx.Amount)
			touches = true
		}
		if ids[tx.CreditAccountID] {
			totals.TotalCredits = totals.TotalCredits.Add(tx.Amount)
			touches = true
		}
		if touches {
			totals.TransactionCount++
		}
	}
	totals.NetChange = netChange(accountType, totals)
	return totals
}

// partition groups accounts by key, returning the groups plus the sorted
// key list for deterministic iteration.
func partition(accounts []model.Account, key func(model.Account) string) (map[string][]model.Account, []string) {
	groups := make(map[string][]model.Account)
	var names []string
	for _, a := range accounts {
		k := key(a)
		if _, seen := groups[k]; !seen {
			names = append(names, k)
		}
		groups[k] = append(groups[k], a)
	}
	sort.Strings(names)
	return groups, names
}

func accountIDs(accounts []model.Account) []string {
	ids := make([]string, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}
	return ids
}

func filterAccounts(accounts []model.Account, opts Options) []model.Account {
	categories := toSet(opts.Categories)
	subCategories := toSet(opts.SubCategories)
	wantIDs := toSet(opts.AccountIDs)

	var result []model.Account
	for _, a := range accounts {
		if len(categories) > 0 && !categories[a.Category] {
			continue
		}
		if len(subCategories) > 0 && !subCategories[a.SubCategory] {
			continue
		}
		if len(wantIDs) > 0 && !wantIDs[a.ID] {
			continue
		}
		result = append(result, a)
	}
	return result
}

func filterTransactions(transactions []model.Transaction, windowStart, windowEnd time.Time, included map[string]bool, narrowed bool) []model.Transaction {
	var result []model.Transaction
	for _, tx := range transactions {
		if tx.Date.Before(windowStart) || tx.Date.After(windowEnd) {
			continue
		}
		if narrowed && !included[tx.DebitAccountID] && !included[tx.CreditAccountID] {
			continue
		}
		result = append(result, tx)
	}
	return result
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// BreakdownUnit selects the calendar unit of a period breakdown.
type BreakdownUnit string

const (
	UnitMonth BreakdownUnit = "month"
	UnitDay   BreakdownUnit = "day"
)

// maxBreakdownDays bounds day-by-day breakdown output.
const maxBreakdownDays = 90

// PeriodActivity is one breakdown row: total income and expense flow inside
// one calendar unit.
type PeriodActivity struct {
	Label   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Breakdown splits the inclusive [start, end] window into calendar units and
// reports income and expense flow per unit, ordered chronologically. Income
// is the sum of credit legs on income accounts, expense the sum of debit
// legs on expense accounts; the category hierarchy plays no part. Day
// breakdowns longer than 90 days are rejected.
func Breakdown(accounts []model.Account, transactions []model.Transaction, start, end model.Date, unit BreakdownUnit) ([]PeriodActivity, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("breakdown range ends %s before it starts %s", end, start)
	}

	types := make(map[string]model.AccountType, len(accounts))
	for _, a := range accounts {
		types[a.ID] = a.Type
	}

	switch unit {
	case UnitMonth:
		return monthlyActivity(types, transactions, start, end), nil
	case UnitDay:
		days := 0
		for d := start; !d.After(end); d = d.AddDays(1) {
			days++
			if days > maxBreakdownDays {
				return nil, fmt.Errorf("day breakdown from %s to %s exceeds %d days", start, end, maxBreakdownDays)
			}
		}
		return dailyActivity(types, transactions, start, end), nil
	default:
		return nil, fmt.Errorf("unknown breakdown unit %q", unit)
	}
}

func monthlyActivity(types map[string]model.AccountType, transactions []model.Transaction, start, end model.Date) []PeriodActivity {
	var rows []PeriodActivity
	year, month := start.Year(), start.Month()
	for {
		unitStart := model.NewDate(year, month, 1)
		unitEnd := model.NewDate(year, month, model.DaysIn(year, month))
		if unitStart.Before(start) {
			unitStart = start
		}
		if unitEnd.After(end) {
			unitEnd = end
		}

		income, expense := flowBetween(types, transactions, unitStart.StartOfDay(), unitEnd.EndOfDay())
		rows = append(rows, PeriodActivity{
			Label:   fmt.Sprintf("%04d-%02d", year, int(month)),
			Income:  income,
			Expense: expense,
		})

		if year == end.Year() && month == end.Month() {
			return rows
		}
		month++
		if month > time.December {
			year, month = year+1, time.January
		}
	}
}

func dailyActivity(types map[string]model.AccountType, transactions []model.Transaction, start, end model.Date) []PeriodActivity {
	var rows []PeriodActivity
	for day := start; !day.After(end); day = day.AddDays(1) {
		income, expense := flowBetween(types, transactions, day.StartOfDay(), day.EndOfDay())
		rows = append(rows, PeriodActivity{Label: day.String(), Income: income, Expense: expense})
	}
	return rows
}

func flowBetween(types map[string]model.AccountType, transactions []model.Transaction, from, to time.Time) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, tx := range transactions {
		if tx.Date.Before(from) || tx.Date.After(to) {
			continue
		}
		if types[tx.CreditAccountID] == model.AccountTypeIncome {
			income = income.Add(tx.Amount)
		}
		if types[tx.DebitAccountID] == model.AccountTypeExpense {
			expense = expense.Add(tx.Amount)
		}
	}
	return income, expense
}
