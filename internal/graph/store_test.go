package graph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalagman/taskgraph/internal/db"
	"github.com/metalagman/taskgraph/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "taskgraph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewStore(conn)
}

func mustTask(t *testing.T, s *Store, id, parent string, effort float64) {
	t.Helper()
	require.NoError(t, s.CreateTask(context.Background(), model.Task{
		ID:              id,
		ParentID:        parent,
		Title:           "task " + id,
		Complexity:      model.ComplexityModerate,
		EstimatedEffort: effort,
	}))
}

func mustRequire(t *testing.T, s *Store, taskID, dependsOnID string) {
	t.Helper()
	require.NoError(t, s.CreateDependency(context.Background(), model.Dependency{
		TaskID:      taskID,
		DependsOnID: dependsOnID,
		Type:        model.DependencyRequired,
	}))
}

func TestCreateTask_SetsDepthFromParent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "root", "", 0)
	mustTask(t, store, "root.1", "root", 2)
	mustTask(t, store, "root.1.1", "root.1", 1)

	root, err := store.GetTask(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 0, root.DepthLevel)
	assert.NotEmpty(t, root.CreatedAt)

	grandchild, err := store.GetTask(ctx, "root.1.1")
	require.NoError(t, err)
	assert.Equal(t, 2, grandchild.DepthLevel)
	assert.Equal(t, "root.1", grandchild.ParentID)
}

func TestCreateTask_RejectsDuplicateID(t *testing.T) {
	store := newTestStore(t)

	mustTask(t, store, "a", "", 0)
	err := store.CreateTask(context.Background(), model.Task{
		ID: "a", Title: "again", Complexity: model.ComplexitySimple,
	})
	require.ErrorIs(t, err, ErrDuplicateTask)
}

func TestCreateTask_RejectsUnknownParent(t *testing.T) {
	store := newTestStore(t)

	err := store.CreateTask(context.Background(), model.Task{
		ID: "a", ParentID: "ghost", Title: "task a", Complexity: model.ComplexitySimple,
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCreateTask_RejectsInvalidInput(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.Error(t, store.CreateTask(ctx, model.Task{Title: "no id", Complexity: model.ComplexitySimple}))
	require.Error(t, store.CreateTask(ctx, model.Task{ID: "a", Title: "bad tier", Complexity: "epic"}))
	require.Error(t, store.CreateTask(ctx, model.Task{
		ID: "a", Title: "negative", Complexity: model.ComplexitySimple, EstimatedEffort: -1,
	}))
}

func TestGetTask_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTask(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCreateDependency_RejectsSelfLoop(t *testing.T) {
	store := newTestStore(t)

	mustTask(t, store, "a", "", 0)
	err := store.CreateDependency(context.Background(), model.Dependency{
		TaskID: "a", DependsOnID: "a", Type: model.DependencyRequired,
	})
	require.ErrorIs(t, err, ErrSelfLoop)
}

func TestCreateDependency_RejectsUnknownEndpoint(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "a", "", 0)
	err := store.CreateDependency(ctx, model.Dependency{
		TaskID: "a", DependsOnID: "ghost", Type: model.DependencyRequired,
	})
	require.ErrorIs(t, err, ErrTaskNotFound)

	err = store.CreateDependency(ctx, model.Dependency{
		TaskID: "ghost", DependsOnID: "a", Type: model.DependencyRequired,
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestCreateDependency_RejectsDuplicateEdge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "a", "", 0)
	mustTask(t, store, "b", "", 0)
	mustRequire(t, store, "a", "b")

	err := store.CreateDependency(ctx, model.Dependency{
		TaskID: "a", DependsOnID: "b", Type: model.DependencyOptional,
	})
	require.ErrorIs(t, err, ErrDuplicateEdge)

	edges, err := store.ListDependenciesOf(ctx, "a", nil)
	require.NoError(t, err)
	assert.Len(t, edges, 1)
	assert.Equal(t, model.DependencyRequired, edges[0].Type)
}

func TestCreateDependency_RejectsRequiredCycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "a", "", 0)
	mustTask(t, store, "b", "", 0)
	mustTask(t, store, "c", "", 0)
	mustRequire(t, store, "a", "b")
	mustRequire(t, store, "b", "c")

	err := store.CreateDependency(ctx, model.Dependency{
		TaskID: "c", DependsOnID: "a", Type: model.DependencyRequired,
	})
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, "c", cycleErr.TaskID)
	assert.Equal(t, "a", cycleErr.DependsOnID)
	assert.Equal(t, []string{"a", "b", "c"}, cycleErr.Path)
	assert.Contains(t, err.Error(), "a -> b -> c")

	// The rejected insert must not mutate the store.
	edges, err := store.ListDependenciesOf(ctx, "c", nil)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestCreateDependency_AdvisoryEdgesSkipCycleCheck(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "a", "", 0)
	mustTask(t, store, "b", "", 0)
	mustRequire(t, store, "a", "b")

	// The reverse edge would be a cycle if it were required.
	require.NoError(t, store.CreateDependency(ctx, model.Dependency{
		TaskID: "b", DependsOnID: "a", Type: model.DependencyOptional,
	}))
}

func TestWouldCreateCycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "a", "", 0)
	mustTask(t, store, "b", "", 0)
	mustTask(t, store, "c", "", 0)
	mustRequire(t, store, "a", "b")
	mustRequire(t, store, "b", "c")

	cyclic, err := store.WouldCreateCycle(ctx, "c", "a")
	require.NoError(t, err)
	assert.True(t, cyclic)

	cyclic, err = store.WouldCreateCycle(ctx, "a", "c")
	require.NoError(t, err)
	assert.False(t, cyclic)
}

func TestDeleteDependency(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "a", "", 0)
	mustTask(t, store, "b", "", 0)
	mustRequire(t, store, "a", "b")

	require.NoError(t, store.DeleteDependency(ctx, "a", "b"))
	require.ErrorIs(t, store.DeleteDependency(ctx, "a", "b"), ErrEdgeNotFound)

	// Edge corrections are delete then insert; the reversed edge is now legal.
	require.NoError(t, store.CreateDependency(ctx, model.Dependency{
		TaskID: "b", DependsOnID: "a", Type: model.DependencyRequired,
	}))
}

func TestDeleteTask_RejectedWhileReferenced(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "root", "", 0)
	mustTask(t, store, "root.1", "root", 0)
	mustTask(t, store, "other", "", 0)
	mustRequire(t, store, "other", "root.1")

	require.ErrorIs(t, store.DeleteTask(ctx, "root"), ErrTaskInUse)
	require.ErrorIs(t, store.DeleteTask(ctx, "root.1"), ErrTaskInUse)
	require.ErrorIs(t, store.DeleteTask(ctx, "missing"), ErrTaskNotFound)

	require.NoError(t, store.DeleteDependency(ctx, "other", "root.1"))
	require.NoError(t, store.DeleteTask(ctx, "root.1"))
	require.NoError(t, store.DeleteTask(ctx, "root"))
}

func TestListEdges_TypeFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "a", "", 0)
	mustTask(t, store, "b", "", 0)
	mustTask(t, store, "c", "", 0)
	mustRequire(t, store, "a", "b")
	require.NoError(t, store.CreateDependency(ctx, model.Dependency{
		TaskID: "a", DependsOnID: "c", Type: model.DependencyOptional,
	}))

	required := model.DependencyRequired
	edges, err := store.ListDependenciesOf(ctx, "a", &required)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "b", edges[0].DependsOnID)

	dependents, err := store.ListDependents(ctx, "c", nil)
	require.NoError(t, err)
	require.Len(t, dependents, 1)
	assert.Equal(t, "a", dependents[0].TaskID)
}

func TestListSubtree(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "root", "", 1)
	mustTask(t, store, "root.1", "root", 2)
	mustTask(t, store, "root.2", "root", 3)
	mustTask(t, store, "root.1.1", "root.1", 4)
	mustTask(t, store, "loner", "", 9)

	subtree, err := store.ListSubtree(ctx, "root")
	require.NoError(t, err)
	ids := make([]string, 0, len(subtree))
	for _, task := range subtree {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"root", "root.1", "root.2", "root.1.1"}, ids)

	_, err = store.ListSubtree(ctx, "missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskTree(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "root", "", 0)
	mustTask(t, store, "root.1", "root", 0)
	mustTask(t, store, "root.2", "root", 0)
	mustRequire(t, store, "root.2", "root.1")

	tree, err := store.TaskTree(ctx, "root")
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, "root.1", tree.Children[0].Task.ID)
	require.Len(t, tree.Children[1].Dependencies, 1)
	assert.Equal(t, "root.1", tree.Children[1].Dependencies[0].DependsOnID)
}

func TestCreateGraph_AtomicRollback(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustTask(t, store, "existing", "", 0)

	err := store.CreateGraph(ctx, []model.Task{
		{ID: "n1", Title: "n1", Complexity: model.ComplexityModerate},
		{ID: "existing", Title: "collides", Complexity: model.ComplexityModerate},
	}, nil)
	require.ErrorIs(t, err, ErrDuplicateTask)

	// The first task of the failed batch must not survive.
	_, err = store.GetTask(ctx, "n1")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAcyclicityInvariantUnderAcceptedInserts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids := []string{"t0", "t1", "t2", "t3", "t4", "t5"}
	for _, id := range ids {
		mustTask(t, store, id, "", 0)
	}

	// Attempt every ordered pair; some inserts are rejected as cycles. After
	// the dust settles no required-edge cycle may exist.
	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			err := store.CreateDependency(ctx, model.Dependency{
				TaskID: from, DependsOnID: to, Type: model.DependencyRequired,
			})
			if err != nil {
				var cycleErr *CycleError
				if !errors.As(err, &cycleErr) {
					t.Fatalf("unexpected error for %s -> %s: %v", from, to, err)
				}
			}
		}
	}

	for _, from := range ids {
		for _, to := range ids {
			if from == to {
				continue
			}
			forward, err := requiredPath(ctx, store.DB(), from, to)
			require.NoError(t, err)
			back, err := requiredPath(ctx, store.DB(), to, from)
			require.NoError(t, err)
			if forward != nil && back != nil {
				t.Fatalf("cycle through %s and %s survived validation", from, to)
			}
		}
	}
}
