package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/famfin/famfin/internal/cli"
	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/ofx"
	"github.com/famfin/famfin/internal/service"
)

func importCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import transactions from an OFX file",
		Long: `Parse a bank-exported OFX/QFX file and record its transactions against an
account. Re-importing the same file is safe: transactions are deduplicated
by a content hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			target, err := lookupAccount(ctx, store, account)
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer file.Close()

			transactions, err := ofx.NewParser().ParseFile(ctx, file, target.ID)
			if err != nil {
				return fmt.Errorf("failed to parse OFX file: %w", err)
			}
			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found in file."))
				return nil
			}

			before, err := countTransactions(cmd, store, target)
			if err != nil {
				return err
			}

			if err := store.SaveTransactions(ctx, transactions); err != nil {
				return fmt.Errorf("failed to save transactions: %w", err)
			}

			after, err := countTransactions(cmd, store, target)
			if err != nil {
				return err
			}

			imported := after - before
			skipped := len(transactions) - imported
			msg := fmt.Sprintf("Imported %d transactions into %q", imported, target.Name)
			if skipped > 0 {
				msg += fmt.Sprintf(" (%d already present)", skipped)
			}
			fmt.Println(cli.SuccessStyle.Render(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "account to import into (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func countTransactions(cmd *cobra.Command, store service.Storage, account *model.Account) (int, error) {
	transactions, err := store.GetTransactionsByAccount(cmd.Context(), account.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return len(transactions), nil
}
