package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"carddex/internal/config"
	"carddex/internal/credits"
	"carddex/internal/library"
)

func newCreditsCommand(ctx *commandContext) *cobra.Command {
	creditsCmd := &cobra.Command{
		Use:   "credits",
		Short: "Manage grading credits",
	}

	creditsCmd.AddCommand(newCreditsBalanceCommand(ctx))
	creditsCmd.AddCommand(newCreditsGrantCommand(ctx))

	return creditsCmd
}

func newCreditsBalanceCommand(ctx *commandContext) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the grading credit balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				ledger := credits.NewStore(db)
				balance, err := ledger.Balance(cmd.Context(), user)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d grading credit(s) remaining\n", balance)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", credits.DefaultUser, "Credit account")
	return cmd
}

func newCreditsGrantCommand(ctx *commandContext) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "grant <amount>",
		Short: "Add grading credits to the balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[0])
			if err != nil || amount < 1 {
				return fmt.Errorf("invalid credit amount %q", args[0])
			}
			return ctx.withLibrary(func(cfg *config.Config, db *library.DB) error {
				ledger := credits.NewStore(db)
				if err := ledger.Grant(cmd.Context(), user, amount); err != nil {
					return err
				}
				balance, err := ledger.Balance(cmd.Context(), user)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Granted %d credit(s); balance is now %d\n", amount, balance)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&user, "user", credits.DefaultUser, "Credit account")
	return cmd
}
