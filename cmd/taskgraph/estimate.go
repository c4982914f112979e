package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/metalagman/taskgraph/internal/config"
	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/plan"
)

func estimateCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "estimate <id>",
		Short: "Aggregate effort over a task subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, cfg config.Config) error {
				planner := plan.NewPlanner(store)
				estimator := plan.NewEstimator(store, planner, cfg.Estimate.HoursPerDay)
				estimate, err := estimator.EstimateEffort(ctx, args[0])
				if err != nil {
					return err
				}
				return writeFormatted(os.Stdout, estimate, format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|yaml)")
	return cmd
}
