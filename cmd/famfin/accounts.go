package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/famfin/famfin/internal/cli"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List and add the accounts money moves through. Budget accounts hold envelope money; tracking accounts sit outside the budget.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts found. Use 'famfin accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\n",
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Kind"))
			fmt.Fprintf(w, "%s\t%s\n",
				strings.Repeat("-", 20),
				strings.Repeat("-", 10))

			for _, account := range accounts {
				kind := "budget"
				if !account.IsBudget {
					kind = cli.SubtleStyle.Render("tracking")
				}
				fmt.Fprintf(w, "%s\t%s\n", account.Name, kind)
			}

			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var tracking bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Long:  `Create an account. Accounts are budget accounts unless --tracking is given.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			existing, err := store.GetAccountByName(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to check existing account: %w", err)
			}
			if existing != nil {
				return fmt.Errorf("account %q already exists", name)
			}

			account, err := store.CreateAccount(ctx, name, !tracking)
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			kind := "budget"
			if !account.IsBudget {
				kind = "tracking"
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created %s account %q", kind, account.Name)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&tracking, "tracking", false, "create a tracking account (outside the budget)")

	return cmd
}
