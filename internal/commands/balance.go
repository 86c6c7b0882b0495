package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/ledger"
	"github.com/tallybook-dev/tallybook/internal/model"
)

func newBalanceCommand(opts *rootOptions) *cobra.Command {
	var at string
	var opening bool

	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Show an account balance derived from the transaction log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()
			ctx := cmd.Context()

			acct, err := b.resolveAccount(ctx, args[0])
			if err != nil {
				return err
			}

			day := model.DateOf(time.Now())
			if at != "" {
				day, err = model.ParseDate(at)
				if err != nil {
					return err
				}
			}

			transactions, err := b.store.Transactions(ctx)
			if err != nil {
				return err
			}

			if opening {
				value := ledger.OpeningBalanceAt(acct, transactions, day.StartOfDay())
				fmt.Printf("%s opening balance on %s: %s\n", acct.Name, day, b.money(value))
				return nil
			}
			value := ledger.ClosingBalanceAt(acct, transactions, day.EndOfDay())
			fmt.Printf("%s balance at end of %s: %s\n", acct.Name, day, b.money(value))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "balance date, 2006-01-02 (default today)")
	cmd.Flags().BoolVar(&opening, "opening", false, "opening balance at the start of the day instead")

	return cmd
}
