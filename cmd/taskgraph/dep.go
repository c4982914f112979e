package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/taskgraph/internal/config"
	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/model"
)

func depCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage dependencies between tasks",
	}
	cmd.AddCommand(depAddCmd())
	cmd.AddCommand(depRmCmd())
	cmd.AddCommand(depListCmd())
	return cmd
}

func depAddCmd() *cobra.Command {
	var depType string
	cmd := &cobra.Command{
		Use:   "add <task> <depends-on>",
		Short: "Add a dependency edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				d := model.Dependency{
					TaskID:      args[0],
					DependsOnID: args[1],
					Type:        model.DependencyType(depType),
				}
				if err := store.CreateDependency(ctx, d); err != nil {
					return err
				}
				log.Info().Msgf("dependency %s -> %s added", d.TaskID, d.DependsOnID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&depType, "type", "required", "dependency type (required|optional|parallel)")
	return cmd
}

func depRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <task> <depends-on>",
		Short: "Remove a dependency edge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				if err := store.DeleteDependency(ctx, args[0], args[1]); err != nil {
					return err
				}
				log.Info().Msgf("dependency %s -> %s removed", args[0], args[1])
				return nil
			})
		},
	}
	return cmd
}

func depListCmd() *cobra.Command {
	var dependents bool
	var depType string
	cmd := &cobra.Command{
		Use:   "list <task>",
		Short: "List a task's dependencies (or its dependents)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				var typ *model.DependencyType
				if depType != "" {
					t := model.DependencyType(depType)
					if !t.Valid() {
						return fmt.Errorf("invalid dependency type %q", depType)
					}
					typ = &t
				}
				var edges []model.Dependency
				var err error
				if dependents {
					edges, err = store.ListDependents(ctx, args[0], typ)
				} else {
					edges, err = store.ListDependenciesOf(ctx, args[0], typ)
				}
				if err != nil {
					return err
				}
				if len(edges) == 0 {
					log.Info().Msg("no dependencies")
					return nil
				}
				for _, d := range edges {
					_, _ = io.WriteString(os.Stdout, fmt.Sprintf("%s\t%s\t%s\n", d.TaskID, d.DependsOnID, d.Type))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dependents, "dependents", false, "list edges where the task is the prerequisite")
	cmd.Flags().StringVar(&depType, "type", "", "filter by dependency type")
	return cmd
}
