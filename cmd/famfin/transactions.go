package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/famfin/famfin/internal/cli"
	"github.com/famfin/famfin/internal/model"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
		Long:  `Record and list income, expense, and transfer transactions.`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(listTxCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	var (
		txnType  string
		account  string
		to       string
		category string
		payee    string
		memo     string
		dateStr  string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record a transaction",
		Long: `Record a transaction. Amounts are non-negative magnitudes; --type carries
the direction. Transfers need --to; --category assigns an envelope.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			if amount.IsNegative() {
				return fmt.Errorf("amount must not be negative; use --type expense")
			}

			date := time.Now().UTC()
			if dateStr != "" {
				date, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", dateStr, err)
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			origin, err := lookupAccount(ctx, store, account)
			if err != nil {
				return err
			}

			txn := model.Transaction{
				Date:      date,
				Amount:    amount,
				Type:      model.TransactionType(txnType),
				AccountID: origin.ID,
				Payee:     payee,
				Memo:      memo,
				Cleared:   true,
			}

			if txn.Type == model.TransactionTypeTransfer {
				if to == "" {
					return fmt.Errorf("transfers require --to")
				}
				dest, lookupErr := lookupAccount(ctx, store, to)
				if lookupErr != nil {
					return lookupErr
				}
				txn.TransferAccountID = &dest.ID
			} else if to != "" {
				return fmt.Errorf("--to is only valid for transfers")
			}

			if category != "" {
				cat, lookupErr := lookupCategory(ctx, store, category)
				if lookupErr != nil {
					return lookupErr
				}
				if cat.IsHeader {
					return fmt.Errorf("category %q is a header and cannot hold transactions", cat.Name)
				}
				txn.CategoryID = &cat.ID
			}

			if err := store.SaveTransactions(ctx, []model.Transaction{txn}); err != nil {
				return fmt.Errorf("failed to save transaction: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Recorded %s of %s", txnType, amount.StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().StringVar(&txnType, "type", "expense", "transaction type (income, expense, transfer)")
	cmd.Flags().StringVar(&account, "account", "", "origin account name (required)")
	cmd.Flags().StringVar(&to, "to", "", "destination account (transfers only)")
	cmd.Flags().StringVar(&category, "category", "", "envelope category")
	cmd.Flags().StringVar(&payee, "payee", "", "payee")
	cmd.Flags().StringVar(&memo, "memo", "", "memo")
	cmd.Flags().StringVar(&dateStr, "date", "", "transaction date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func listTxCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var transactions []model.Transaction
			if account != "" {
				origin, lookupErr := lookupAccount(ctx, store, account)
				if lookupErr != nil {
					return lookupErr
				}
				transactions, err = store.GetTransactionsByAccount(ctx, origin.ID)
			} else {
				transactions, err = store.GetTransactions(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No transactions found."))
				return nil
			}

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}
			names := make(map[string]string, len(categories))
			for _, cat := range categories {
				names[cat.ID.String()] = cat.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Date"),
				cli.HeaderStyle.Render("Type"),
				cli.HeaderStyle.Render("Payee"),
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Amount"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 10),
				strings.Repeat("-", 8),
				strings.Repeat("-", 20),
				strings.Repeat("-", 16),
				strings.Repeat("-", 10))

			for i := range transactions {
				txn := &transactions[i]
				catName := ""
				if txn.CategoryID != nil {
					catName = names[txn.CategoryID.String()]
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					txn.Date.Format("2006-01-02"),
					txn.Type,
					txn.Payee,
					catName,
					txn.Amount.StringFixed(2))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "only show transactions from this account")

	return cmd
}
