package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
)

func newAuditCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Show the audit trail of automated writes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()

			entries, err := auditlog.Read(b.dir)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Audit log is empty")
				return nil
			}

			for _, e := range entries {
				line := fmt.Sprintf("%s  %-10s %-22s %s",
					e.Timestamp.Format(time.RFC3339), e.Actor, e.Action, e.Details)
				if e.TransactionID != "" {
					line += "  tx=" + e.TransactionID
				}
				if e.TemplateID != "" {
					line += "  template=" + e.TemplateID
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
