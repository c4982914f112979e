// Package plan computes execution orderings and effort estimates over the
// task graph.
package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/model"
)

// Planner derives execution orderings from the stored graph.
type Planner struct {
	store *graph.Store
}

// NewPlanner creates a planner over the given store.
func NewPlanner(store *graph.Store) *Planner {
	return &Planner{store: store}
}

// PlanExecution computes a level-batched topological order over the scoped
// task set: the direct children of parentID, or all root tasks when parentID
// is empty. Only required edges between tasks inside the scope count.
//
// Each level is a maximal batch of tasks whose required predecessors all sit
// in earlier levels, so callers wanting maximum concurrency run a level at a
// time while Order gives a single deterministic sequence.
func (p *Planner) PlanExecution(ctx context.Context, parentID string) (model.ExecutionPlan, error) {
	var scoped []model.Task
	var err error
	if parentID == "" {
		scoped, err = p.store.ListRoots(ctx)
	} else {
		scoped, err = p.store.ListChildren(ctx, parentID)
	}
	if err != nil {
		return model.ExecutionPlan{}, err
	}
	if len(scoped) == 0 {
		return model.ExecutionPlan{Order: []string{}, Levels: [][]string{}}, nil
	}

	ids := make([]string, 0, len(scoped))
	inScope := make(map[string]bool, len(scoped))
	for _, t := range scoped {
		ids = append(ids, t.ID)
		inScope[t.ID] = true
	}

	required := model.DependencyRequired
	dependents := make(map[string][]string, len(ids))
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		deps, err := p.store.ListDependenciesOf(ctx, id, &required)
		if err != nil {
			return model.ExecutionPlan{}, err
		}
		for _, d := range deps {
			if !inScope[d.DependsOnID] {
				continue
			}
			dependents[d.DependsOnID] = append(dependents[d.DependsOnID], id)
			inDegree[id]++
		}
	}

	// Kahn's algorithm in batches. Scope order is insertion order, which
	// keeps levels deterministic.
	var levels [][]string
	var current []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			current = append(current, id)
		}
	}
	placed := 0
	for len(current) > 0 {
		levels = append(levels, current)
		placed += len(current)
		var next []string
		for _, id := range current {
			for _, dep := range dependents[id] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		current = next
	}

	if placed != len(ids) {
		var stuck []string
		for _, id := range ids {
			if inDegree[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		// Committed state should be acyclic; a residual cycle means the
		// validator was bypassed or the store is corrupt. Never return a
		// partial plan here.
		log.Error().Str("parent", parentID).Strs("tasks", stuck).
			Msg("residual required-edge cycle in committed graph")
		return model.ExecutionPlan{}, fmt.Errorf("%w: tasks never became ready: %s",
			graph.ErrInconsistentGraph, strings.Join(stuck, ", "))
	}

	order := make([]string, 0, placed)
	for _, level := range levels {
		order = append(order, level...)
	}
	return model.ExecutionPlan{Order: order, Levels: levels}, nil
}
