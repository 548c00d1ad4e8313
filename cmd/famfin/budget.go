package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/famfin/famfin/internal/budget"
	"github.com/famfin/famfin/internal/cli"
	"github.com/famfin/famfin/internal/model"
)

func budgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "View and edit the monthly budget",
	}

	cmd.AddCommand(showBudgetCmd())
	cmd.AddCommand(setBudgetCmd())

	return cmd
}

func showBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [month]",
		Short: "Show the budget for a month",
		Long:  `Display every category's budgeted amount, activity, and rolled-forward available balance for a month (default: the current month).`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			month, err := monthArg(args)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := budget.Load(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Budget for %s", month)))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Budgeted"),
				cli.HeaderStyle.Render("Activity"),
				cli.HeaderStyle.Render("Available"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 24),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10),
				strings.Repeat("-", 10))

			totalBudgeted := decimal.Zero
			for _, cat := range snap.Categories {
				if cat.IsSystem || cat.IsHidden {
					continue
				}

				name := cat.Name
				if cat.Emoji != "" {
					name = cat.Emoji + " " + name
				}

				if cat.IsHeader {
					fmt.Fprintf(w, "%s\t\t\t\n", cli.HeaderStyle.Render(name))
					continue
				}

				budgeted := snap.Budgeted(cat.ID, month)
				totalBudgeted = totalBudgeted.Add(budgeted)
				if cat.ParentID != nil {
					name = "  " + name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					name,
					budgeted.StringFixed(2),
					cli.Amount(snap.Activity(cat.ID, month)),
					cli.Amount(snap.Available(cat.ID, month)))
			}
			w.Flush()

			fmt.Println()
			printBanner(snap, month)
			fmt.Printf("Budgeted this month: %s\n", totalBudgeted.StringFixed(2))
			return nil
		},
	}
}

// printBanner surfaces the month's To Budget state the way the original app
// banners do: overbudgeted, money left to budget, or nothing when balanced.
func printBanner(snap *budget.Snapshot, month model.Month) {
	available := snap.ToBudgetAvailable(month)

	switch snap.Banner(month) {
	case budget.StateOverbudgeted:
		fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf(
			"Overbudgeted by %s. Run 'famfin fix overbudgeted' to rebalance.",
			available.Neg().StringFixed(2))))
	case budget.StateMoneyToBudget:
		left := available.Sub(snap.FutureBudgeted(month))
		fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("To Budget: %s", left.StringFixed(2))))
	case budget.StateBalanced:
		fmt.Println(cli.SuccessStyle.Render("Every unit of money is budgeted."))
	}
}

func setBudgetCmd() *cobra.Command {
	var monthFlag string

	cmd := &cobra.Command{
		Use:   "set <category> <amount>",
		Short: "Set a category's budgeted amount for a month",
		Long:  `Assign money to one category's envelope. Setting zero removes the allocation.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			var month model.Month
			if monthFlag != "" {
				month, err = model.ParseMonth(monthFlag)
			} else {
				month, err = monthArg(nil)
			}
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := lookupCategory(ctx, store, args[0])
			if err != nil {
				return err
			}
			if !cat.Budgetable() {
				return fmt.Errorf("category %q cannot hold a budget", cat.Name)
			}

			if err := store.SetAllocationAmount(ctx, cat.ID, month, amount); err != nil {
				return fmt.Errorf("failed to set budget: %w", err)
			}

			if amount.IsZero() {
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Removed %s budget for %q", month, cat.Name)))
			} else {
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Budgeted %s to %q for %s", amount.StringFixed(2), cat.Name, month)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "month to budget (YYYY-MM, default current)")

	return cmd
}
