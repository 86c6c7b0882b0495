package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/auditlog"
	"github.com/tallybook-dev/tallybook/internal/model"
	"github.com/tallybook-dev/tallybook/internal/recurring"
	"github.com/tallybook-dev/tallybook/internal/schedule"
)

func newRecurringCommand(opts *rootOptions) *cobra.Command {
	recurringCmd := &cobra.Command{
		Use:   "recurring",
		Short: "Manage recurring transaction templates",
	}
	recurringCmd.AddCommand(newRecurringAddCommand(opts))
	recurringCmd.AddCommand(newRecurringListCommand(opts))
	recurringCmd.AddCommand(newRecurringSetActiveCommand(opts, "enable", true))
	recurringCmd.AddCommand(newRecurringSetActiveCommand(opts, "disable", false))
	recurringCmd.AddCommand(newRecurringProcessCommand(opts))
	return recurringCmd
}

func newRecurringAddCommand(opts *rootOptions) *cobra.Command {
	var amount, debit, credit, frequency, start, end, note string
	var day, notify int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a recurring template",
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

			startDate := model.DateOf(time.Now())
			if start != "" {
				startDate, err = model.ParseDate(start)
				if err != nil {
					return err
				}
			}
			var endDate model.Date
			if end != "" {
				endDate, err = model.ParseDate(end)
				if err != nil {
					return err
				}
			}

			debitAcct, err := b.resolveAccount(ctx, debit)
			if err != nil {
				return err
			}
			creditAcct, err := b.resolveAccount(ctx, credit)
			if err != nil {
				return err
			}

			tmpl := model.RecurringTemplate{
				ID:               uuid.NewString(),
				Amount:           value,
				DebitAccountID:   debitAcct.ID,
				CreditAccountID:  creditAcct.ID,
				Note:             note,
				Frequency:        model.Frequency(frequency),
				DayOfRecurrence:  day,
				StartDate:        startDate,
				EndDate:          endDate,
				NotifyBeforeDays: notify,
				Active:           true,
			}
			if err := tmpl.Validate(); err != nil {
				return err
			}
			tmpl.NextOccurrence = schedule.FirstOccurrenceOnOrAfter(tmpl.Frequency, tmpl.DayOfRecurrence, startDate)

			if err := b.store.CreateTemplate(ctx, tmpl); err != nil {
				return err
			}
			fmt.Printf("Created %s template %s, first occurrence %s\n", tmpl.Frequency, tmpl.ID, tmpl.NextOccurrence)

			// The first occurrence's reminder is scheduled here; every later
			// one is scheduled when the occurrence before it materializes.
			sched, err := b.newScheduler()
			if err != nil {
				return err
			}
			defer sched.Close()

			p := recurring.NewProcessor(b.store, b.store, sched, b.log)
			p.Policy = b.reminderPolicy()
			scheduled, err := p.ScheduleReminder(ctx, tmpl, time.Now())
			if err != nil {
				return err
			}
			if scheduled {
				fmt.Printf("Reminder scheduled %d day(s) ahead\n", tmpl.NotifyBeforeDays)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&debit, "debit", "", "debit account id or name (required)")
	_ = cmd.MarkFlagRequired("debit")
	cmd.Flags().StringVar(&credit, "credit", "", "credit account id or name (required)")
	_ = cmd.MarkFlagRequired("credit")
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily, weekly, monthly or yearly (required)")
	_ = cmd.MarkFlagRequired("frequency")
	cmd.Flags().IntVar(&day, "day", 1, "weekday 0-6 for weekly, day of month 1-31 for monthly/yearly")
	cmd.Flags().StringVar(&start, "start", "", "start date, 2006-01-02 (default today)")
	cmd.Flags().StringVar(&end, "end", "", "end date, 2006-01-02 (default open-ended)")
	cmd.Flags().StringVar(&note, "note", "", "note copied onto each materialized transaction")
	cmd.Flags().IntVar(&notify, "notify", 0, "days of advance reminder, 0 disables")

	return cmd
}

func newRecurringListCommand(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recurring templates by next occurrence",
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
			templates, err := b.store.Templates(ctx)
			if err != nil {
				return err
			}

			for _, t := range templates {
				if !t.Active && !all {
					continue
				}
				status := ""
				if !t.Active {
					status = " (disabled)"
				}
				line := fmt.Sprintf("%s  %12s  %-8s %s -> %s",
					t.NextOccurrence, t.Amount.StringFixed(2), t.Frequency,
					svc.Name(t.CreditAccountID), svc.Name(t.DebitAccountID))
				if t.Note != "" {
					line += "  " + t.Note
				}
				if t.NotifyBeforeDays > 0 {
					line += fmt.Sprintf("  notify %dd", t.NotifyBeforeDays)
				}
				fmt.Printf("%s  %s%s\n", line, t.ID, status)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include disabled templates")

	return cmd
}

func newRecurringSetActiveCommand(opts *rootOptions, use string, active bool) *cobra.Command {
	short := "Disable a template without losing its history"
	done := "Disabled"
	if active {
		short = "Re-enable a disabled template"
		done = "Enabled"
	}
	return &cobra.Command{
		Use:   use + " <template-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()

			if err := b.store.SetTemplateActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			fmt.Printf("%s template %s\n", done, args[0])
			return nil
		},
	}
}

func newRecurringProcessCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Materialize all templates due today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			result, err := p.ProcessDue(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("Checked %d template(s): %d transaction(s) created, %d reminder(s) scheduled\n",
				result.Checked, result.Created, result.Reminders)
			return nil
		},
	}
}
