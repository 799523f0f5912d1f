package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCmd(run runner) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the default menu into the catalog",
		Long:  "Insert the embedded default menu. Existing pizzas are kept unless --force is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, b Backend) error {
				res, err := b.Seed(ctx, force)
				if err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inserted %d, skipped %d\n", res.Inserted, res.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite pizzas that already exist")
	return cmd
}

func newMigrateCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (postgres backend)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, b Backend) error {
				applied, err := b.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("migrate failed: %w", err)
				}
				if len(applied) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
					return nil
				}
				for _, v := range applied {
					fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
				}
				return nil
			})
		},
	}
}

func newOrderCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Inspect orders",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print an order as a receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, b Backend) error {
				o, err := b.GetOrder(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), RenderReceipt(*o))
				return nil
			})
		},
	})
	return cmd
}

func newMenuCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List available pizzas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, b Backend) error {
				pizzas, err := b.Menu(ctx)
				if err != nil {
					return fmt.Errorf("list menu: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), RenderMenu(pizzas))
				return nil
			})
		},
	}
}
