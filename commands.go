package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"budgetcraft/collections"
	"budgetcraft/services"
	"budgetcraft/store"
)

func newABCCommand(app core.App, st store.Store) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "abc <budgetId>",
		Short: "Print the ABC curve of a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := collections.Setup(app); err != nil {
				return err
			}
			ctx := context.Background()
			b, err := st.GetBudget(ctx, owner, args[0])
			if err != nil {
				return fmt.Errorf("load budget %s: %w", args[0], err)
			}
			inputs, err := st.ListInputs(ctx, owner)
			if err != nil {
				return fmt.Errorf("load inputs: %w", err)
			}
			return printABC(cmd.OutOrStdout(), services.ClassifyABC(b, inputs))
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "id of the user owning the budget")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newRecalcCommand(app core.App) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Recompute cached budget totals that drifted from their instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := collections.Setup(app); err != nil {
				return err
			}
			n, err := collections.MigrateBudgetTotals(app)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d budgets updated\n", n)
			return nil
		},
	}
}

var bandColors = map[services.Band]*color.Color{
	services.BandA: color.New(color.FgRed, color.Bold),
	services.BandB: color.New(color.FgYellow),
	services.BandC: color.New(color.FgGreen),
}

func printABC(w io.Writer, r services.ABCReport) error {
	if r.Message != "" {
		_, err := fmt.Fprintln(w, r.Message)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tInsumo\tCategoria\tValor\t%%\t%% acum.\tClasse\n")
	for i, en := range r.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, en.Name, en.Category.Label(), services.FormatBRL(en.Value),
			services.FormatPercent(en.Percent), services.FormatPercent(en.CumulativePercent),
			bandColors[en.Band].Sprint(en.Band))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, bs := range r.Bands {
		fmt.Fprintf(w, "%s: %d insumos, %s (%s)\n",
			bandColors[bs.Band].Sprint(bs.Band), bs.Count, services.FormatBRL(bs.Value), services.FormatPercent(bs.Percent))
	}
	_, err := fmt.Fprintf(w, "Total: %s\n", services.FormatBRL(r.TotalValue))
	return err
}
