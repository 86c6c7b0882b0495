package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/recurring"
)

func newDaemonCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Sweep recurring templates on an interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Environment overrides (broker URL, db path) may live in a .env
			// file next to the daemon; load it before the config does.
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("loading .env: %w", err)
			}

			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()

			sched, err := b.newScheduler()
			if err != nil {
				return err
			}
			defer sched.Close()

			p := recurring.NewProcessor(b.store, b.store, sched, b.log)
			p.Policy = b.reminderPolicy()
			p.Audit = func(e auditlog.Entry) error {
				return auditlog.Append(b.dir, []auditlog.Entry{e})
			}

			interval := time.Duration(b.cfg.Daemon.IntervalMinutes) * time.Minute
			if interval <= 0 {
				interval = time.Hour
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b.log.Info().Dur("interval", interval).Msg("daemon started")
			sweep(ctx, b, p)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					b.log.Info().Msg("daemon stopping")
					return nil
				case <-ticker.C:
					sweep(ctx, b, p)
				}
			}
		},
	}
}

// sweep runs one processing pass. Failures are logged, never fatal: the next
// tick retries whatever is still due.
func sweep(ctx context.Context, b *book, p *recurring.Processor) {
	if _, err := p.ProcessDue(ctx, time.Now()); err != nil {
		b.log.Error().Err(err).Msg("recurring sweep failed")
	}
}
