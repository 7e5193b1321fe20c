package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"carddex/internal/catalog"
	"carddex/internal/config"
	"carddex/internal/library"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the card catalog",
	}

	catalogCmd.AddCommand(newCatalogImportCommand(ctx))
	catalogCmd.AddCommand(newCatalogSearchCommand(ctx))
	catalogCmd.AddCommand(newCatalogSetsCommand(ctx))

	return catalogCmd
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <dump.json>",
		Short: "Import a catalog dump file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				store := catalog.NewStore(db)
				stats, err := store.ImportFile(cmd.Context(), args[0], ctx.newLogger())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Imported %d sets and %d cards (%d skipped)\n",
					stats.Sets, stats.Cards, stats.Skipped)
				return nil
			})
		},
	}
}

func newCatalogSearchCommand(ctx *commandContext) *cobra.Command {
	var setFilter string
	var numberFilter string
	var limit int

	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Search catalog cards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				query := catalog.Query{
					SetNameContains: strings.TrimSpace(setFilter),
					LocalID:         strings.TrimSpace(numberFilter),
					Limit:           limit,
				}
				if len(args) == 1 {
					query.NameContains = strings.TrimSpace(args[0])
				}
				if query.IsZero() {
					return fmt.Errorf("provide a name, --set, or --number to search for")
				}

				store := catalog.NewStore(db)
				cards, err := store.Search(cmd.Context(), query)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(cards) == 0 {
					fmt.Fprintln(out, "No cards matched")
					return nil
				}
				rows := make([][]string, 0, len(cards))
				for _, card := range cards {
					rows = append(rows, []string{
						card.ID,
						card.Name,
						card.SetName,
						card.LocalID,
						card.Rarity,
						formatPrice(card.Price.Market),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Set", "No.", "Rarity", "Market"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&setFilter, "set", "", "Filter by set name substring")
	cmd.Flags().StringVar(&numberFilter, "number", "", "Filter by printed card number")
	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum rows to return")
	return cmd
}

func newCatalogSetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sets",
		Short: "List catalog sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				store := catalog.NewStore(db)
				sets, err := store.ListSets(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(sets) == 0 {
					fmt.Fprintln(out, "Catalog is empty; run `carddex catalog import` first")
					return nil
				}
				rows := make([][]string, 0, len(sets))
				for _, set := range sets {
					rows = append(rows, []string{
						set.ID,
						set.Name,
						set.Series,
						set.ReleaseDate,
						strconv.Itoa(set.CardCount),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Name", "Series", "Released", "Cards"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
