package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func newTxCommand(opts *rootOptions) *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and inspect transactions",
	}
	txCmd.AddCommand(newTxAddCommand(opts))
	txCmd.AddCommand(newTxListCommand(opts))
	return txCmd
}

func newTxAddCommand(opts *rootOptions) *cobra.Command {
	var amount, debit, credit, date, note string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()
			ctx := cmd.Context()

			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amount, err)
			}

			instant := time.Now()
			if date != "" {
				day, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				instant = day.StartOfDay()
			}

			debitAcct, err := b.resolveAccount(ctx, debit)
			if err != nil {
				return err
			}
			creditAcct, err := b.resolveAccount(ctx, credit)
			if err != nil {
				return err
			}

			tx := model.Transaction{
				ID:              uuid.NewString(),
				Date:            instant,
				Amount:          value,
				DebitAccountID:  debitAcct.ID,
				CreditAccountID: creditAcct.ID,
				Note:            note,
				Tags:            tags,
			}
			if err := b.store.CreateTransaction(ctx, tx); err != nil {
				return err
			}

			fmt.Printf("Recorded %s: debit %q, credit %q (%s)\n",
				b.money(value), debitAcct.Name, creditAcct.Name, tx.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&debit, "debit", "", "debit account id or name (required)")
	_ = cmd.MarkFlagRequired("debit")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account id or name (required)")
	_ = cmd.MarkFlagRequired("credit")
	cmd.Flags().StringVar(&date, "date", "", "transaction date, 2006-01-02 (default today)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")

	return cmd
}

func newTxListCommand(opts *rootOptions) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions in date order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()
			ctx := cmd.Context()

			svc, err := b.accountService(ctx)
			if err != nil {
				return err
			}

			var filterID string
			if account != "" {
				acct, err := b.resolveAccount(ctx, account)
				if err != nil {
					return err
				}
				filterID = acct.ID
			}

			transactions, err := b.store.Transactions(ctx)
			if err != nil {
				return err
			}

			for _, tx := range transactions {
				if filterID != "" && !tx.References(filterID) {
					continue
				}
				line := fmt.Sprintf("%s  %12s  %s -> %s",
					tx.Day(), tx.Amount.StringFixed(2), svc.Name(tx.CreditAccountID), svc.Name(tx.DebitAccountID))
				if tx.Note != "" {
					line += "  " + tx.Note
				}
				if len(tx.Tags) > 0 {
					line += "  [" + strings.Join(tx.Tags, ", ") + "]"
				}
				fmt.Println(line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "only transactions touching this account")

	return cmd
}
