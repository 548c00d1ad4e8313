package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/famfin/famfin/internal/budget"
	"github.com/famfin/famfin/internal/cli"
)

func autofillCmd() *cobra.Command {
	var (
		source    string
		overwrite bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "autofill [month]",
		Short: "Fill a month's budget from history",
		Long: `Propose and apply an allocation for every category using a historical
heuristic. Sources:

  last-budgeted     copy last month's allocations
  last-spent        copy last month's net spending
  average-budgeted  12-month average allocation
  average-spent     12-month average net spending

Without --overwrite, categories already budgeted this month keep their
amounts. Use --dry-run to preview the plan without writing anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			fillSource, err := budget.ParseAutoFillSource(source)
			if err != nil {
				return err
			}

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

			plan := budget.BuildAutoFillPlan(snap, month, fillSource, overwrite)
			if len(plan.Entries) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to fill: no category has a suggestion."))
				return nil
			}

			fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("Auto-fill plan for %s (%s)", month, fillSource)))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Amount"))
			fmt.Fprintf(w, "%s\t%s\n", strings.Repeat("-", 24), strings.Repeat("-", 10))
			for _, entry := range plan.Entries {
				fmt.Fprintf(w, "%s\t%s\n", entry.Category.Name, entry.Amount.StringFixed(2))
			}
			w.Flush()
			fmt.Printf("Total: %s across %d categories\n", plan.Total().StringFixed(2), len(plan.Entries))

			if dryRun {
				fmt.Println(cli.InfoStyle.Render("Dry run: no allocations were written."))
				return nil
			}

			bar := progressbar.NewOptions(len(plan.Entries),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Filling budget..."),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)

			err = budget.ApplyAutoFillPlan(ctx, store, plan, func(done, total int) {
				_ = bar.Set(done)
			})
			if err != nil {
				return err
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf(
				"Budgeted %s across %d categories for %s",
				plan.Total().StringFixed(2), len(plan.Entries), month)))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", string(budget.SourceLastMonthBudgeted),
		"heuristic source (last-budgeted, last-spent, average-budgeted, average-spent)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace amounts already budgeted this month")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview the plan without writing")

	return cmd
}
