// Package commands wires the tallybook CLI: one subcommand per book
// operation, all sharing the --data flag pointing at the book directory.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "tallybook",
		Short:   "Personal double-entry bookkeeping",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.dataDir, "data", ".", "book directory")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newAccountCommand(opts),
		newTxCommand(opts),
		newBalanceCommand(opts),
		newReportCommand(opts),
		newBreakdownCommand(opts),
		newRecurringCommand(opts),
		newDaemonCommand(opts),
		newImportCommand(opts),
		newExportCommand(opts),
		newAuditCommand(opts),
	)

	return rootCmd
}
