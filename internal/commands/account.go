package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	accountCmd.AddCommand(newAccountAddCommand(opts))
	accountCmd.AddCommand(newAccountListCommand(opts))
	accountCmd.AddCommand(newAccountDeactivateCommand(opts))
	return accountCmd
}

func newAccountAddCommand(opts *rootOptions) *cobra.Command {
	var name, accountType, category, subCategory, opening string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()

			openingBalance := decimal.Zero
			if opening != "" {
				openingBalance, err = decimal.NewFromString(opening)
				if err != nil {
					return fmt.Errorf("parsing opening balance %q: %w", opening, err)
				}
			}

			acct := model.Account{
				ID:             uuid.NewString(),
				Name:           name,
				Type:           model.AccountType(accountType),
				Category:       category,
				SubCategory:    subCategory,
				OpeningBalance: openingBalance,
				Active:         true,
			}
			if err := b.store.CreateAccount(cmd.Context(), acct); err != nil {
				return err
			}

			fmt.Printf("Created %s account %q (%s)\n", acct.Type, acct.Name, acct.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&accountType, "type", "", "asset, liability, income, or expense (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&category, "category", "", "report category")
	cmd.Flags().StringVar(&subCategory, "sub-category", "", "report sub-category")
	cmd.Flags().StringVar(&opening, "opening", "", "opening balance (asset and liability only)")

	return cmd
}

func newAccountListCommand(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()

			svc, err := b.accountService(cmd.Context())
			if err != nil {
				return err
			}

			accts := svc.Active()
			if all {
				accts = svc.All()
			}

			for _, group := range model.AccountTypes {
				first := true
				for _, acct := range accts {
					if acct.Type != group {
						continue
					}
					if first {
						fmt.Printf("%s\n", group)
						first = false
					}
					status := ""
					if !acct.Active {
						status = "  (deactivated)"
					}
					fmt.Printf("  %-28s %-20s %s%s\n", acct.Name, categoryLabel(acct), acct.ID, status)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include deactivated accounts")

	return cmd
}

func categoryLabel(acct model.Account) string {
	switch {
	case acct.Category == "":
		return "-"
	case acct.SubCategory == "":
		return acct.Category
	default:
		return acct.Category + "/" + acct.SubCategory
	}
}

func newAccountDeactivateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deactivate <account>",
		Short: "Deactivate an account, keeping its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := opts.openBook()
			if err != nil {
				return err
			}
			defer b.Close()

			acct, err := b.resolveAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := b.store.DeactivateAccount(cmd.Context(), acct.ID); err != nil {
				return err
			}

			fmt.Printf("Deactivated %q (%s)\n", acct.Name, acct.ID)
			return nil
		},
	}
	return cmd
}
