package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/famfin/famfin/internal/cli"
	"github.com/famfin/famfin/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
		Long:  `List, add, and hide the envelope categories money is budgeted into.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(hideCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	var showHidden bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\n",
				cli.HeaderStyle.Render("Category"),
				cli.HeaderStyle.Render("Kind"))
			fmt.Fprintf(w, "%s\t%s\n",
				strings.Repeat("-", 24),
				strings.Repeat("-", 8))

			for _, cat := range categories {
				if cat.IsHidden && !showHidden {
					continue
				}

				name := cat.Name
				if cat.Emoji != "" {
					name = cat.Emoji + " " + name
				}
				switch {
				case cat.IsSystem:
					fmt.Fprintf(w, "%s\t%s\n", name, cli.SubtleStyle.Render("system"))
				case cat.IsHeader:
					fmt.Fprintf(w, "%s\t%s\n", cli.HeaderStyle.Render(name), "header")
				case cat.IsHidden:
					fmt.Fprintf(w, "  %s\t%s\n", cli.SubtleStyle.Render(name), cli.SubtleStyle.Render("hidden"))
				default:
					indent := ""
					if cat.ParentID != nil {
						indent = "  "
					}
					fmt.Fprintf(w, "%s%s\t\n", indent, name)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden categories")

	return cmd
}

func addCategoryCmd() *cobra.Command {
	var (
		emoji    string
		parent   string
		isHeader bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a spending category. Use --header for a grouping node and --parent to place a category under a header.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			existing, err := store.GetCategoryByName(ctx, name)
			if err != nil {
				return fmt.Errorf("failed to check existing category: %w", err)
			}
			if existing != nil {
				return fmt.Errorf("category %q already exists", name)
			}

			params := service.CategoryParams{
				Name:     name,
				Emoji:    emoji,
				IsHeader: isHeader,
			}

			if parent != "" {
				if isHeader {
					return fmt.Errorf("a header category cannot have a parent")
				}
				parentCat, lookupErr := lookupCategory(ctx, store, parent)
				if lookupErr != nil {
					return lookupErr
				}
				if !parentCat.IsHeader {
					return fmt.Errorf("category %q is not a header", parent)
				}
				params.ParentID = &parentCat.ID
			}

			cat, err := store.CreateCategory(ctx, params)
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Created category %q", cat.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&emoji, "emoji", "", "emoji shown next to the category name")
	cmd.Flags().StringVar(&parent, "parent", "", "header category to nest under")
	cmd.Flags().BoolVar(&isHeader, "header", false, "create a grouping header (cannot hold money)")

	return cmd
}

func hideCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hide <name>",
		Short: "Hide a category",
		Long:  `Hide a category from plans and overviews. Its history is kept.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cat, err := lookupCategory(ctx, store, args[0])
			if err != nil {
				return err
			}
			if cat.IsSystem {
				return fmt.Errorf("the %q category cannot be hidden", cat.Name)
			}

			if err := store.HideCategory(ctx, cat.ID); err != nil {
				return fmt.Errorf("failed to hide category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Hid category %q", cat.Name)))
			return nil
		},
	}
}
