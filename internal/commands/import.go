package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/importer"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var format, account, inflow, outflow string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import bank statement CSVs as transactions",
		Long: "Import parses a bank statement CSV and records each new row as a\n" +
			"double-entry transaction. With a file argument it imports that file;\n" +
			"without one it sweeps the book's import/ directory and moves finished\n" +
			"files to import/processed/. Rows already imported are skipped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()
			ctx := cmd.Context()

			registry := importer.DefaultRegistry()
			parser := registry.Get(format)
			if parser == nil {
				return fmt.Errorf("unknown format %q, have: %s", format, strings.Join(registry.Formats(), ", "))
			}

			statement, err := b.resolveAccount(ctx, account)
			if err != nil {
				return err
			}
			inflowAcct, err := b.resolveAccount(ctx, inflow)
			if err != nil {
				return err
			}
			outflowAcct, err := b.resolveAccount(ctx, outflow)
			if err != nil {
				return err
			}
			mapping := importer.Mapping{
				StatementAccountID: statement.ID,
				InflowAccountID:    inflowAcct.ID,
				OutflowAccountID:   outflowAcct.ID,
			}

			im := importer.NewImporter(b.store, b.log)
			im.Audit = func(e auditlog.Entry) error {
				return auditlog.Append(b.dir, []auditlog.Entry{e})
			}

			if len(args) == 1 {
				result, err := importFile(ctx, im, parser, mapping, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d imported, %d skipped\n", args[0], result.Imported, result.Skipped)
				return nil
			}

			files, err := importer.Scan(b.dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("Nothing to import")
				return nil
			}
			for _, f := range files {
				result, err := importFile(ctx, im, parser, mapping, f.Path)
				if err != nil {
					return fmt.Errorf("importing %s: %w", f.Name, err)
				}
				if err := importer.MarkProcessed(b.dir, f.Name); err != nil {
					return err
				}
				fmt.Printf("%s: %d imported, %d skipped\n", f.Name, result.Imported, result.Skipped)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "statement format")
	cmd.Flags().StringVar(&account, "account", "", "statement account id or name (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&inflow, "inflow", "", "income account for deposits (required)")
	_ = cmd.MarkFlagRequired("inflow")
	cmd.Flags().StringVar(&outflow, "outflow", "", "expense account for withdrawals (required)")
	_ = cmd.MarkFlagRequired("outflow")

	return cmd
}

func importFile(ctx context.Context, im *importer.Importer, parser importer.Parser, mapping importer.Mapping, path string) (importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()
	return im.Import(ctx, f, parser, mapping)
}
