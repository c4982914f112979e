// Package graph persists tasks and dependency edges in SQLite and guards the
// invariant that required edges never form a cycle.
package graph

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/metalagman/taskgraph/internal/model"
)

// Store manages task and dependency persistence. All mutating methods run in
// a transaction on the store's single connection, so a cycle check and the
// insert it gates commit atomically.
type Store struct {
	db *sql.DB
}

// NewStore creates a store over an opened taskgraph database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// CreateTask inserts a task. DepthLevel is computed from the parent and
// CreatedAt is assigned when empty.
func (s *Store) CreateTask(ctx context.Context, t model.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create task: %w", err)
	}
	if err := s.insertTask(ctx, tx, t); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create task: %w", err)
	}
	return nil
}

func (s *Store) insertTask(ctx context.Context, tx *sql.Tx, t model.Task) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id=?`, t.ID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("task %s: %w", t.ID, ErrDuplicateTask)
	case err != sql.ErrNoRows:
		return fmt.Errorf("check task id: %w", err)
	}

	depth := 0
	parent := any(nil)
	if t.ParentID != "" {
		var parentDepth int
		err := tx.QueryRowContext(ctx, `SELECT depth_level FROM tasks WHERE id=?`, t.ParentID).Scan(&parentDepth)
		if err == sql.ErrNoRows {
			return fmt.Errorf("parent task %s: %w", t.ParentID, ErrTaskNotFound)
		}
		if err != nil {
			return fmt.Errorf("read parent depth: %w", err)
		}
		depth = parentDepth + 1
		parent = t.ParentID
	}

	createdAt := t.CreatedAt
	if createdAt == "" {
		createdAt = now()
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id, parent_id, title, description, complexity, estimated_effort, depth_level, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, parent, t.Title, t.Description, string(t.Complexity), t.EstimatedEffort, depth, createdAt); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

const taskColumns = `id, parent_id, title, description, complexity, estimated_effort, depth_level, created_at`

func scanTask(row interface{ Scan(...any) error }) (model.Task, error) {
	var t model.Task
	var parent sql.NullString
	var complexity string
	if err := row.Scan(&t.ID, &parent, &t.Title, &t.Description, &complexity, &t.EstimatedEffort, &t.DepthLevel, &t.CreatedAt); err != nil {
		return model.Task{}, err
	}
	if parent.Valid {
		t.ParentID = parent.String
	}
	t.Complexity = model.Complexity(complexity)
	return t, nil
}

// GetTask fetches a task by id.
func (s *Store) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id=?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("read task: %w", err)
	}
	return t, nil
}

// ListChildren returns the direct children of parentID in insertion order.
func (s *Store) ListChildren(ctx context.Context, parentID string) ([]model.Task, error) {
	return s.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE parent_id=? ORDER BY rowid`, parentID)
}

// ListRoots returns tasks without a parent in insertion order.
func (s *Store) ListRoots(ctx context.Context) ([]model.Task, error) {
	return s.listTasks(ctx, `SELECT `+taskColumns+` FROM tasks WHERE parent_id IS NULL ORDER BY rowid`)
}

func (s *Store) listTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()
	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

// CreateDependency inserts an edge after validating it inside the same
// transaction: endpoints must exist, the ordered pair must be new, and a
// required edge must not close a cycle.
func (s *Store) CreateDependency(ctx context.Context, d model.Dependency) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.TaskID == d.DependsOnID {
		return fmt.Errorf("task %s: %w", d.TaskID, ErrSelfLoop)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create dependency: %w", err)
	}
	if err := s.insertDependency(ctx, tx, d); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create dependency: %w", err)
	}
	return nil
}

func (s *Store) insertDependency(ctx context.Context, tx *sql.Tx, d model.Dependency) error {
	for _, id := range []string{d.TaskID, d.DependsOnID} {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id=?`, id).Scan(&exists)
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
		}
		if err != nil {
			return fmt.Errorf("check endpoint: %w", err)
		}
	}

	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM dependencies WHERE task_id=? AND depends_on_id=?`,
		d.TaskID, d.DependsOnID).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("%s -> %s: %w", d.TaskID, d.DependsOnID, ErrDuplicateEdge)
	case err != sql.ErrNoRows:
		return fmt.Errorf("check edge: %w", err)
	}

	if d.Type == model.DependencyRequired {
		path, err := requiredPath(ctx, tx, d.DependsOnID, d.TaskID)
		if err != nil {
			return err
		}
		if path != nil {
			return &CycleError{TaskID: d.TaskID, DependsOnID: d.DependsOnID, Path: path}
		}
	}

	createdAt := d.CreatedAt
	if createdAt == "" {
		createdAt = now()
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO dependencies(task_id, depends_on_id, dep_type, created_at)
		VALUES(?, ?, ?, ?)`, d.TaskID, d.DependsOnID, string(d.Type), createdAt); err != nil {
		return fmt.Errorf("insert dependency: %w", err)
	}
	return nil
}

// WouldCreateCycle reports whether inserting a required edge
// taskID -> dependsOnID would close a required-edge cycle. CreateDependency
// performs the same check transactionally; this read-only form is for
// callers that want to probe before attempting an insert.
func (s *Store) WouldCreateCycle(ctx context.Context, taskID, dependsOnID string) (bool, error) {
	path, err := requiredPath(ctx, s.db, dependsOnID, taskID)
	if err != nil {
		return false, err
	}
	return path != nil, nil
}

// CreateGraph inserts a batch of tasks and edges in one transaction. Used by
// decomposition so a failed edge insert never leaves a partial chain behind.
func (s *Store) CreateGraph(ctx context.Context, tasks []model.Task, edges []model.Dependency) error {
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, d := range edges {
		if err := d.Validate(); err != nil {
			return err
		}
		if d.TaskID == d.DependsOnID {
			return fmt.Errorf("task %s: %w", d.TaskID, ErrSelfLoop)
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create graph: %w", err)
	}
	for _, t := range tasks {
		if err := s.insertTask(ctx, tx, t); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	for _, d := range edges {
		if err := s.insertDependency(ctx, tx, d); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create graph: %w", err)
	}
	return nil
}

// DeleteDependency removes an edge. Edges are immutable; a correction is a
// delete followed by a fresh insert.
func (s *Store) DeleteDependency(ctx context.Context, taskID, dependsOnID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM dependencies WHERE task_id=? AND depends_on_id=?`,
		taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("delete dependency: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s -> %s: %w", taskID, dependsOnID, ErrEdgeNotFound)
	}
	return nil
}

// DeleteTask removes a task. Deletion is rejected while children or edges
// still reference the task; there is no cascade.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete task: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id=?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("task %s: %w", id, ErrTaskNotFound)
		}
		return fmt.Errorf("check task: %w", err)
	}
	var refs int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE parent_id=?`, id).Scan(&refs); err != nil {
		return fmt.Errorf("count children: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("task %s has %d children: %w", id, refs, ErrTaskInUse)
	}
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM dependencies WHERE task_id=? OR depends_on_id=?`, id, id).Scan(&refs); err != nil {
		return fmt.Errorf("count edges: %w", err)
	}
	if refs > 0 {
		return fmt.Errorf("task %s has %d edges: %w", id, refs, ErrTaskInUse)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete task: %w", err)
	}
	return nil
}

// ListDependenciesOf returns edges where taskID is the dependent, optionally
// filtered by type.
func (s *Store) ListDependenciesOf(ctx context.Context, taskID string, typ *model.DependencyType) ([]model.Dependency, error) {
	return s.listEdges(ctx, "task_id", taskID, typ)
}

// ListDependents returns edges where taskID is the prerequisite, optionally
// filtered by type.
func (s *Store) ListDependents(ctx context.Context, taskID string, typ *model.DependencyType) ([]model.Dependency, error) {
	return s.listEdges(ctx, "depends_on_id", taskID, typ)
}

func (s *Store) listEdges(ctx context.Context, column, taskID string, typ *model.DependencyType) ([]model.Dependency, error) {
	query := `SELECT task_id, depends_on_id, dep_type, created_at FROM dependencies WHERE ` + column + `=?`
	args := []any{taskID}
	if typ != nil {
		query += ` AND dep_type=?`
		args = append(args, string(*typ))
	}
	query += ` ORDER BY rowid`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dependencies: %w", err)
	}
	defer rows.Close()
	var out []model.Dependency
	for rows.Next() {
		var d model.Dependency
		var typ string
		if err := rows.Scan(&d.TaskID, &d.DependsOnID, &typ, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		d.Type = model.DependencyType(typ)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dependencies: %w", err)
	}
	return out, nil
}

// ListSubtree returns rootID and every descendant reachable via parent_id,
// in breadth-first order. The traversal uses an explicit worklist so deep
// hierarchies cannot exhaust the stack.
func (s *Store) ListSubtree(ctx context.Context, rootID string) ([]model.Task, error) {
	root, err := s.GetTask(ctx, rootID)
	if err != nil {
		return nil, err
	}
	out := []model.Task{root}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		children, err := s.ListChildren(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			out = append(out, child)
			queue = append(queue, child.ID)
		}
	}
	return out, nil
}

// TaskTree returns rootID with its outgoing dependency lists and child
// subtrees, built with an explicit worklist.
func (s *Store) TaskTree(ctx context.Context, rootID string) (*model.TaskNode, error) {
	root, err := s.GetTask(ctx, rootID)
	if err != nil {
		return nil, err
	}
	tree := &model.TaskNode{Task: root}
	stack := []*model.TaskNode{tree}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		deps, err := s.ListDependenciesOf(ctx, node.Task.ID, nil)
		if err != nil {
			return nil, err
		}
		node.Dependencies = deps
		children, err := s.ListChildren(ctx, node.Task.ID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			childNode := &model.TaskNode{Task: child}
			node.Children = append(node.Children, childNode)
			stack = append(stack, childNode)
		}
	}
	return tree, nil
}
