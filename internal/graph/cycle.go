package graph

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/metalagman/taskgraph/internal/model"
)

// querier is satisfied by *sql.DB and *sql.Tx so the reachability search can
// run inside the same transaction as the edge insert it gates.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// requiredPath returns the path of required edges from start to target, both
// endpoints included, or nil if target is not reachable. A proposed edge
// task -> dependsOn closes a cycle exactly when requiredPath(dependsOn, task)
// is non-nil.
//
// Breadth-first search, O(V+E) per call. Fine for the task graphs this store
// is built for (well under 10^4 nodes); densely connected graphs would need
// incremental topological numbering instead.
func requiredPath(ctx context.Context, q querier, start, target string) ([]string, error) {
	if start == target {
		return []string{start}, nil
	}
	parent := map[string]string{start: ""}
	frontier := []string{start}
	for len(frontier) > 0 {
		next := make([]string, 0, len(frontier))
		for _, id := range frontier {
			deps, err := requiredDependsOn(ctx, q, id)
			if err != nil {
				return nil, err
			}
			for _, dep := range deps {
				if _, seen := parent[dep]; seen {
					continue
				}
				parent[dep] = id
				if dep == target {
					return buildPath(parent, start, target), nil
				}
				next = append(next, dep)
			}
		}
		frontier = next
	}
	return nil, nil
}

func requiredDependsOn(ctx context.Context, q querier, taskID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT depends_on_id FROM dependencies WHERE task_id=? AND dep_type=?`,
		taskID, string(model.DependencyRequired))
	if err != nil {
		return nil, fmt.Errorf("query required edges: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return out, nil
}

func buildPath(parent map[string]string, start, target string) []string {
	var rev []string
	for cur := target; cur != ""; cur = parent[cur] {
		rev = append(rev, cur)
		if cur == start {
			break
		}
	}
	path := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}
