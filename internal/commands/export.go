package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/accounts"
	"github.com/tallybook-dev/tallybook/internal/model"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the chart of accounts and transaction log as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()
			ctx := cmd.Context()

			dir := out
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(b.dir, dir)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating export dir: %w", err)
			}

			accts, err := b.store.Accounts(ctx)
			if err != nil {
				return err
			}
			transactions, err := b.store.Transactions(ctx)
			if err != nil {
				return err
			}

			if err := writeFile(filepath.Join(dir, "accounts.csv"), func(f *os.File) error {
				return accounts.WriteAccounts(f, accts)
			}); err != nil {
				return err
			}
			if err := writeFile(filepath.Join(dir, "transactions.csv"), func(f *os.File) error {
				return writeTransactions(f, transactions)
			}); err != nil {
				return err
			}

			fmt.Printf("Exported %d account(s) and %d transaction(s) to %s\n", len(accts), len(transactions), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "export", "output directory, relative paths resolve inside the book")

	return cmd
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func writeTransactions(f *os.File, transactions []model.Transaction) error {
	cw := csv.NewWriter(f)

	if err := cw.Write([]string{"transaction_id", "date", "amount", "debit_account_id", "credit_account_id", "note", "tags"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, tx := range transactions {
		row := []string{
			tx.ID,
			tx.Date.Format(time.RFC3339Nano),
			tx.Amount.String(),
			tx.DebitAccountID,
			tx.CreditAccountID,
			tx.Note,
			strings.Join(tx.Tags, ";"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
