package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/metalagman/taskgraph/internal/config"
	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/model"
)

func taskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(taskAddCmd())
	cmd.AddCommand(taskShowCmd())
	cmd.AddCommand(taskTreeCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskRmCmd())
	return cmd
}

func taskAddCmd() *cobra.Command {
	var id, parent, complexity, description string
	var effort float64

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return fmt.Errorf("title is required")
			}
			if id == "" {
				id = uuid.NewString()
			}
			t := model.Task{
				ID:              id,
				ParentID:        strings.TrimSpace(parent),
				Title:           title,
				Description:     description,
				Complexity:      model.Complexity(complexity),
				EstimatedEffort: effort,
			}
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				if err := store.CreateTask(ctx, t); err != nil {
					return err
				}
				log.Info().Msgf("task %s added", t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "task id (generated when omitted)")
	cmd.Flags().StringVar(&parent, "parent", "", "parent task id")
	cmd.Flags().StringVar(&complexity, "complexity", "moderate", "complexity (simple|moderate|complex|very_complex)")
	cmd.Flags().StringVar(&description, "desc", "", "task description")
	cmd.Flags().Float64Var(&effort, "effort", 0, "estimated effort in hours")
	return cmd
}

func taskShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				t, err := store.GetTask(ctx, args[0])
				if err != nil {
					return err
				}
				return writeFormatted(os.Stdout, t, format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|yaml)")
	return cmd
}

func taskTreeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tree <id>",
		Short: "Show a task with its subtree and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				tree, err := store.TaskTree(ctx, args[0])
				if err != nil {
					return err
				}
				return writeFormatted(os.Stdout, tree, format)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json|yaml)")
	return cmd
}

func taskListCmd() *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List root tasks, or children of --parent",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				var items []model.Task
				var err error
				if parent == "" {
					items, err = store.ListRoots(ctx)
				} else {
					items, err = store.ListChildren(ctx, parent)
				}
				if err != nil {
					return err
				}
				if len(items) == 0 {
					log.Info().Msg("no tasks")
					return nil
				}
				for _, item := range items {
					_, _ = io.WriteString(os.Stdout, fmt.Sprintf("%s\t%s\t%.1f\t%s\n",
						item.ID, item.Complexity, item.EstimatedEffort, item.Title))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "list children of this task")
	return cmd
}

func taskRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task (rejected while children or edges reference it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *graph.Store, _ config.Config) error {
				if err := store.DeleteTask(ctx, args[0]); err != nil {
					return err
				}
				log.Info().Msgf("task %s deleted", args[0])
				return nil
			})
		},
	}
	return cmd
}
