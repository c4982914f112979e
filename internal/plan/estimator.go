package plan

import (
	"context"
	"math"

	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/model"
)

// DefaultHoursPerDay converts aggregate effort hours into days. Policy
// constant; override through NewEstimator.
const DefaultHoursPerDay = 8.0

// Estimator aggregates effort across a task subtree.
type Estimator struct {
	store       *graph.Store
	planner     *Planner
	hoursPerDay float64
}

// NewEstimator creates an estimator. hoursPerDay <= 0 selects the default
// capacity.
func NewEstimator(store *graph.Store, planner *Planner, hoursPerDay float64) *Estimator {
	if hoursPerDay <= 0 {
		hoursPerDay = DefaultHoursPerDay
	}
	return &Estimator{store: store, planner: planner, hoursPerDay: hoursPerDay}
}

// EstimateEffort sums estimated effort and task count over taskID and every
// descendant reachable via parent_id. Critical path length is the planner's
// level count over the task's direct children: the minimum number of
// sequential rounds under unlimited parallelism, measured one hierarchy level
// deep.
func (e *Estimator) EstimateEffort(ctx context.Context, taskID string) (model.EffortEstimate, error) {
	subtree, err := e.store.ListSubtree(ctx, taskID)
	if err != nil {
		return model.EffortEstimate{}, err
	}
	total := 0.0
	for _, t := range subtree {
		total += t.EstimatedEffort
	}

	executionPlan, err := e.planner.PlanExecution(ctx, taskID)
	if err != nil {
		return model.EffortEstimate{}, err
	}

	return model.EffortEstimate{
		TaskID:             taskID,
		TotalEffort:        total,
		TaskCount:          len(subtree),
		CriticalPathLength: len(executionPlan.Levels),
		EstimatedDays:      math.Round(total/e.hoursPerDay*10) / 10,
	}, nil
}
