package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/taskgraph/internal/config"
	"github.com/metalagman/taskgraph/internal/decompose"
	"github.com/metalagman/taskgraph/internal/graph"
)

func decomposeCmd() *cobra.Command {
	var strategy string
	cmd := &cobra.Command{
		Use:   "decompose <root-id>",
		Short: "Expand a task into phase subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, cfg config.Config) error {
				var opts []decompose.Option
				if len(cfg.Decompose.Phases) > 0 {
					opts = append(opts, decompose.WithPhases(decompose.PhasesFromNames(cfg.Decompose.Phases)))
				}
				if cfg.Decompose.PhaseEffort > 0 {
					opts = append(opts, decompose.WithPhaseEffort(cfg.Decompose.PhaseEffort))
				}
				engine := decompose.NewEngine(store, opts...)
				if strategy == "" {
					strategy = cfg.Decompose.DefaultStrategy
				}
				subtasks, err := engine.Decompose(ctx, args[0], decompose.Strategy(strategy))
				if err != nil {
					return err
				}
				log.Info().Msgf("created %d subtasks", len(subtasks))
				for _, t := range subtasks {
					_, _ = io.WriteString(os.Stdout, fmt.Sprintf("%s\t%s\n", t.ID, t.Title))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", "", "decomposition strategy (hierarchical|sequential|parallel)")
	return cmd
}
