package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"carddex/internal/collection"
	"carddex/internal/config"
	"carddex/internal/library"
)

func newCollectionCommand(ctx *commandContext) *cobra.Command {
	collectionCmd := &cobra.Command{
		Use:   "collection",
		Short: "Manage your card collection",
	}

	collectionCmd.AddCommand(newCollectionListCommand(ctx))
	collectionCmd.AddCommand(newCollectionAddCommand(ctx))
	collectionCmd.AddCommand(newCollectionRemoveCommand(ctx))
	collectionCmd.AddCommand(newCollectionValueCommand(ctx))

	return collectionCmd
}

func newCollectionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List collection entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				store := collection.NewStore(db)
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Collection is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.CardName,
						entry.SetName,
						entry.LocalID,
						strconv.Itoa(entry.Quantity),
						formatGrade(entry.Grade),
						formatPrice(entry.Value()),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Card", "Set", "No.", "Qty", "Grade", "Value"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}
}

func newCollectionAddCommand(ctx *commandContext) *cobra.Command {
	var quantity int
	var condition string

	cmd := &cobra.Command{
		Use:   "add <card-id>",
		Short: "Add a catalog card to the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				store := collection.NewStore(db)
				id, err := store.Add(cmd.Context(), args[0], quantity, condition)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d for card %s\n", id, args[0])
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Number of copies")
	cmd.Flags().StringVar(&condition, "condition", "", "Card condition note")
	return cmd
}

func newCollectionRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <entry-id>",
		Short: "Remove a collection entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				store := collection.NewStore(db)
				if err := store.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d\n", id)
				return nil
			})
		},
	}
}

func newCollectionValueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "value",
		Short: "Show the collection's total market value",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				store := collection.NewStore(db)
				total, err := store.TotalValue(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total collection value: %s\n", formatPrice(total))
				return nil
			})
		},
	}
}
