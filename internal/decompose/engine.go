// Package decompose expands a root task into phase subtasks with default
// ordering edges.
package decompose

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/model"
)

// Strategy selects how subtask edges are laid out.
type Strategy string

// Known strategies.
const (
	StrategyHierarchical Strategy = "hierarchical"
	StrategySequential   Strategy = "sequential"
	StrategyParallel     Strategy = "parallel"
)

// ErrUnknownStrategy is returned before any write when the strategy name is
// not recognized.
var ErrUnknownStrategy = errors.New("unknown decomposition strategy")

// buildFunc produces the subtask and edge lists for a strategy. Builders are
// pure; persistence happens in one store call afterwards.
type buildFunc func(root model.Task, phases []Phase, phaseEffort float64) ([]model.Task, []model.Dependency)

// The strategy set is closed, so dispatch is a lookup table rather than an
// open interface.
var builders = map[Strategy]buildFunc{
	StrategyHierarchical: buildChain,
	StrategySequential:   buildChain,
	StrategyParallel:     buildFlat,
}

// Engine creates subtask records and their ordering edges through the store.
type Engine struct {
	store       *graph.Store
	phases      []Phase
	phaseCounts map[model.Complexity]int
	phaseEffort float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPhases overrides the default phase template list.
func WithPhases(phases []Phase) Option {
	return func(e *Engine) {
		if len(phases) > 0 {
			e.phases = phases
		}
	}
}

// WithPhaseEffort overrides the default per-phase effort estimate.
func WithPhaseEffort(hours float64) Option {
	return func(e *Engine) {
		if hours > 0 {
			e.phaseEffort = hours
		}
	}
}

// NewEngine creates a decomposition engine over the given store.
func NewEngine(store *graph.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		phases:      DefaultPhases(),
		phaseCounts: defaultPhaseCounts(),
		phaseEffort: DefaultPhaseEffort,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decompose expands rootID into phase subtasks per the strategy. The phase
// template list is truncated to the count for the root's complexity. All
// subtasks and edges are committed atomically; validation failures happen
// before any write.
func (e *Engine) Decompose(ctx context.Context, rootID string, strategy Strategy) ([]model.Task, error) {
	if strategy == "" {
		strategy = StrategyHierarchical
	}
	build, ok := builders[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
	root, err := e.store.GetTask(ctx, rootID)
	if err != nil {
		return nil, err
	}
	count, ok := e.phaseCounts[root.Complexity]
	if !ok {
		return nil, fmt.Errorf("task %s: invalid complexity %q", root.ID, root.Complexity)
	}
	if count > len(e.phases) {
		count = len(e.phases)
	}

	tasks, edges := build(root, e.phases[:count], e.phaseEffort)
	if err := e.store.CreateGraph(ctx, tasks, edges); err != nil {
		return nil, err
	}
	log.Debug().Str("task", rootID).Str("strategy", string(strategy)).
		Int("subtasks", len(tasks)).Msg("decomposed task")
	return tasks, nil
}

// buildChain creates one subtask per phase with a required edge from each
// subtask to its predecessor, forming a single chain.
func buildChain(root model.Task, phases []Phase, phaseEffort float64) ([]model.Task, []model.Dependency) {
	tasks := subtasks(root, phases, phaseEffort)
	var edges []model.Dependency
	for i := 1; i < len(tasks); i++ {
		edges = append(edges, model.Dependency{
			TaskID:      tasks[i].ID,
			DependsOnID: tasks[i-1].ID,
			Type:        model.DependencyRequired,
		})
	}
	return tasks, edges
}

// buildFlat creates the same subtasks with no edges, so they all land in the
// planner's first level.
func buildFlat(root model.Task, phases []Phase, phaseEffort float64) ([]model.Task, []model.Dependency) {
	return subtasks(root, phases, phaseEffort), nil
}

func subtasks(root model.Task, phases []Phase, phaseEffort float64) []model.Task {
	out := make([]model.Task, 0, len(phases))
	for i, phase := range phases {
		out = append(out, model.Task{
			ID:              fmt.Sprintf("%s.%d", root.ID, i+1),
			ParentID:        root.ID,
			Title:           phase.Title,
			Description:     phase.Description(),
			Complexity:      model.ComplexityModerate,
			EstimatedEffort: phaseEffort,
		})
	}
	return out
}
