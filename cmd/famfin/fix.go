package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/famfin/famfin/internal/budget"
	"github.com/famfin/famfin/internal/cli"
	"github.com/famfin/famfin/internal/model"
)

func fixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Repair budget problems",
		Long:  `Resolve an overbudgeted month or cover overspent categories by moving budgeted money between envelopes.`,
	}

	cmd.AddCommand(fixOverbudgetedCmd())
	cmd.AddCommand(fixOverspentCmd())

	return cmd
}

func fixOverbudgetedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overbudgeted [month]",
		Short: "Pull budgeted money back until To Budget reaches zero",
		Long: `Resolve a negative To Budget balance by reducing category budgets,
largest available balance first, until the deficit is gone or no category
has money left to give back.`,
		Args: cobra.MaximumNArgs(1),
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

			deficit := snap.ToBudgetAvailable(month).Neg()
			if !deficit.IsPositive() {
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s is not overbudgeted.", month)))
				return nil
			}

			fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("Overbudgeted by %s", deficit.StringFixed(2))))

			steps, err := budget.FixOverbudgeted(ctx, store, month)
			if err != nil {
				return err
			}
			for _, step := range steps {
				fmt.Printf("  reduced %q by %s\n", step.Category.Name, step.Amount.StringFixed(2))
			}

			snap, err = budget.Load(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to reload ledger: %w", err)
			}
			remaining := snap.ToBudgetAvailable(month)
			if remaining.IsNegative() {
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf(
					"Still overbudgeted by %s: no category has money left to release.",
					remaining.Neg().StringFixed(2))))
				return nil
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Rebalanced %s in %d steps.", month, len(steps))))
			return nil
		},
	}
}

func fixOverspentCmd() *cobra.Command {
	var (
		monthFlag string
		covers    []string
		froms     []string
	)

	cmd := &cobra.Command{
		Use:   "overspent --cover <category>... --from <category>=<amount>...",
		Short: "Cover overspent categories from other envelopes",
		Long: `Move budgeted money into overspent categories. --cover selects the
categories to top up; each --from names a source and how much to draw
from it, as name=amount (omit =amount to draw the source's default).
The move only runs once the pooled amounts cover the full deficit, and
all changes commit together.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				month model.Month
				err   error
			)
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

			snap, err := budget.Load(ctx, store)
			if err != nil {
				return fmt.Errorf("failed to load ledger: %w", err)
			}

			overspent := budget.OverspentCategories(snap, month)
			if len(overspent) == 0 {
				fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("No category is overspent in %s.", month)))
				return nil
			}

			if len(covers) == 0 {
				fmt.Println(cli.WarningStyle.Render(fmt.Sprintf("Overspent categories in %s:", month)))
				for _, candidate := range overspent {
					fmt.Printf("  %s\t%s\n", candidate.Category.Name, cli.Amount(candidate.Available))
				}
				fmt.Println(cli.InfoStyle.Render("Select categories with --cover and sources with --from."))
				return nil
			}

			plan := budget.NewOverspentPlan(month)
			for _, name := range covers {
				cat, lookupErr := lookupCategory(ctx, store, name)
				if lookupErr != nil {
					return lookupErr
				}
				if err := plan.SelectTarget(snap, cat.ID); err != nil {
					return fmt.Errorf("cannot cover %q: %w", name, err)
				}
			}

			for _, spec := range froms {
				name, amountStr, hasAmount := strings.Cut(spec, "=")
				cat, lookupErr := lookupCategory(ctx, store, name)
				if lookupErr != nil {
					return lookupErr
				}

				amount := plan.DefaultCommitment(snap, cat.ID)
				if hasAmount {
					amount, err = decimal.NewFromString(amountStr)
					if err != nil {
						return fmt.Errorf("invalid amount in %q: %w", spec, err)
					}
				}
				if err := plan.CommitSource(snap, cat.ID, amount); err != nil {
					return fmt.Errorf("cannot draw from %q: %w", name, err)
				}
			}

			deficit := plan.TotalDeficit(snap)
			pooled := plan.Pooled()
			if !plan.Ready(snap) {
				return fmt.Errorf("pooled %s does not cover the %s deficit; commit more with --from",
					pooled.StringFixed(2), deficit.StringFixed(2))
			}

			steps, err := plan.Apply(ctx, store)
			if err != nil {
				return err
			}
			for _, step := range steps {
				fmt.Printf("  covered %q with %s\n", step.Category.Name, step.Amount.StringFixed(2))
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
				"Moved %s to cover %d categories in %s.", pooled.StringFixed(2), len(steps), month)))
			return nil
		},
	}

	cmd.Flags().StringVar(&monthFlag, "month", "", "month to fix (YYYY-MM, default current)")
	cmd.Flags().StringSliceVar(&covers, "cover", nil, "overspent category to cover (repeatable)")
	cmd.Flags().StringSliceVar(&froms, "from", nil, "source as name=amount (repeatable)")

	return cmd
}
