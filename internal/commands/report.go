package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/report"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	var from, to string
	var categories, subCategories, accounts []string
	var historicalNet bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Hierarchical period report by type, category and sub-category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()
			ctx := cmd.Context()

			start, err := model.ParseDate(from)
			if err != nil {
				return err
			}
			end, err := model.ParseDate(to)
			if err != nil {
				return err
			}
			if end.Before(start) {
				return fmt.Errorf("report range ends %s before it starts %s", end, start)
			}

			var accountIDs []string
			for _, ref := range accounts {
				acct, err := b.resolveAccount(ctx, ref)
				if err != nil {
					return err
				}
				accountIDs = append(accountIDs, acct.ID)
			}

			all, err := b.store.Accounts(ctx)
			if err != nil {
				return err
			}
			transactions, err := b.store.Transactions(ctx)
			if err != nil {
				return err
			}

			reportOpts := report.Options{
				Categories:    categories,
				SubCategories: subCategories,
				AccountIDs:    accountIDs,
			}
			if historicalNet {
				reportOpts.NetChange = report.NetChangeByZeroBalance
			}

			printReport(report.Generate(all, transactions, start, end, reportOpts))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start, 2006-01-02 (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "period end, 2006-01-02 (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "restrict to category (repeatable)")
	cmd.Flags().StringSliceVar(&subCategories, "sub-category", nil, "restrict to sub-category (repeatable)")
	cmd.Flags().StringSliceVar(&accounts, "account", nil, "restrict to account id or name (repeatable)")
	cmd.Flags().BoolVar(&historicalNet, "historical-net", false, "derive net change from balances whenever either end is non-zero")

	return cmd
}

func printReport(rep report.PeriodReport) {
	fmt.Printf("Period %s to %s (%d transactions)\n\n", rep.Start, rep.End, rep.TransactionCount)
	fmt.Printf("%-30s %14s %14s %14s %5s\n", "", "OPENING", "CLOSING", "NET", "TXS")

	for _, tr := range rep.Types {
		printTotalsRow(0, strings.ToUpper(string(tr.Type)), tr.GroupTotals)
		for _, cr := range tr.Categories {
			printTotalsRow(2, groupName(cr.Category), cr.GroupTotals)
			for _, sr := range cr.SubCategories {
				printTotalsRow(4, groupName(sr.SubCategory), sr.GroupTotals)
			}
		}
	}

	fmt.Printf("\n%-30s %14s %14s\n", "TOTAL",
		rep.TotalOpeningBalance.StringFixed(2), rep.TotalClosingBalance.StringFixed(2))
}

func printTotalsRow(indent int, label string, totals report.GroupTotals) {
	fmt.Printf("%s%-*s %14s %14s %14s %5d\n",
		strings.Repeat(" ", indent), 30-indent, label,
		totals.OpeningBalance.StringFixed(2), totals.ClosingBalance.StringFixed(2),
		totals.NetChange.StringFixed(2), totals.TransactionCount)
}

func groupName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}
