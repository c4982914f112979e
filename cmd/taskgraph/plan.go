package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/metalagman/taskgraph/internal/config"
	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/plan"
)

func planCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "plan [parent-id]",
		Short: "Compute execution order and parallel batches",
		Long: `Compute a topological execution order over the direct children of
parent-id, or over all root tasks when no argument is given. Only required
edges affect the ordering.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := ""
			if len(args) == 1 {
				parent = args[0]
			}
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				planner := plan.NewPlanner(store)
				executionPlan, err := planner.PlanExecution(ctx, parent)
				if err != nil {
					return err
				}
				return writeFormatted(os.Stdout, executionPlan, format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|yaml)")
	return cmd
}
