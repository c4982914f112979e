package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/taskgraph/internal/graph"
	"github.com/metalagman/taskgraph/internal/model"
)

func newTestEstimator(t *testing.T, hoursPerDay float64) (testEnv, *Estimator) {
	t.Helper()
	env := newTestEnv(t)
	return env, NewEstimator(env.store, env.planner, hoursPerDay)
}

func TestEstimateEffort_SubtreeAggregation(t *testing.T) {
	env, estimator := newTestEstimator(t, 0)
	ctx := context.Background()

	env.task(t, "root", "", 0)
	env.task(t, "c1", "root", 2)
	env.task(t, "c2", "root", 3)
	env.task(t, "c3", "root", 5)
	env.task(t, "c1.1", "c1", 1)

	estimate, err := estimator.EstimateEffort(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 11.0, estimate.TotalEffort)
	assert.Equal(t, 4+1, estimate.TaskCount)
	// No edges among the children, so one parallel round.
	assert.Equal(t, 1, estimate.CriticalPathLength)
	assert.Equal(t, 1.4, estimate.EstimatedDays) // 11h / 8h per day, rounded
}

func TestEstimateEffort_CriticalPathFromChain(t *testing.T) {
	env, estimator := newTestEstimator(t, 0)
	ctx := context.Background()

	env.task(t, "root", "", 0)
	env.task(t, "s1", "root", 4)
	env.task(t, "s2", "root", 4)
	env.task(t, "s3", "root", 4)
	env.edge(t, "s2", "s1", model.DependencyRequired)
	env.edge(t, "s3", "s2", model.DependencyRequired)

	estimate, err := estimator.EstimateEffort(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 3, estimate.CriticalPathLength)
	assert.Equal(t, 12.0, estimate.TotalEffort)
	assert.Equal(t, 1.5, estimate.EstimatedDays)
}

func TestEstimateEffort_LeafTask(t *testing.T) {
	env, estimator := newTestEstimator(t, 0)

	env.task(t, "leaf", "", 6)

	estimate, err := estimator.EstimateEffort(context.Background(), "leaf")
	require.NoError(t, err)
	assert.Equal(t, 6.0, estimate.TotalEffort)
	assert.Equal(t, 1, estimate.TaskCount)
	assert.Equal(t, 0, estimate.CriticalPathLength)
	assert.Equal(t, 0.8, estimate.EstimatedDays)
}

func TestEstimateEffort_CustomCapacity(t *testing.T) {
	env, estimator := newTestEstimator(t, 4)

	env.task(t, "root", "", 8)

	estimate, err := estimator.EstimateEffort(context.Background(), "root")
	require.NoError(t, err)
	assert.Equal(t, 2.0, estimate.EstimatedDays)
}

func TestEstimateEffort_UnknownTask(t *testing.T) {
	_, estimator := newTestEstimator(t, 0)

	_, err := estimator.EstimateEffort(context.Background(), "missing")
	require.ErrorIs(t, err, graph.ErrTaskNotFound)
}
