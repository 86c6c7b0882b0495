package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/report"
)

func newBreakdownCommand(opts *rootOptions) *cobra.Command {
	var from, to, unit string

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Income and expense flow per calendar unit",
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

			accounts, err := b.store.Accounts(ctx)
			if err != nil {
				return err
			}
			transactions, err := b.store.Transactions(ctx)
			if err != nil {
				return err
			}

			rows, err := report.Breakdown(accounts, transactions, start, end, report.BreakdownUnit(unit))
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %14s %14s %14s\n", "PERIOD", "INCOME", "EXPENSE", "NET")
			for _, row := range rows {
				net := row.Income.Sub(row.Expense)
				fmt.Printf("%-10s %14s %14s %14s\n",
					row.Label, row.Income.StringFixed(2), row.Expense.StringFixed(2), net.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start, 2006-01-02 (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "period end, 2006-01-02 (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&unit, "unit", string(report.UnitMonth), "calendar unit: month or day")

	return cmd
}
