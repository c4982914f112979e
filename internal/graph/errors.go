package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the store. Callers branch on them with
// errors.Is; the wrapped message carries the offending ids.
var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrEdgeNotFound  = errors.New("dependency not found")
	ErrDuplicateTask = errors.New("task id already exists")
	ErrDuplicateEdge = errors.New("dependency already exists")
	ErrSelfLoop      = errors.New("task cannot depend on itself")
	ErrTaskInUse     = errors.New("task is referenced by other records")

	// ErrInconsistentGraph means a required-edge cycle was observed in
	// committed state. The validator gates every insert, so this indicates a
	// bypassed validator or store corruption and is never worked around.
	ErrInconsistentGraph = errors.New("dependency graph is inconsistent")
)

// CycleError reports a rejected edge insert together with the existing
// required-edge path it would have closed.
type CycleError struct {
	TaskID      string
	DependsOnID string
	Path        []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle: edge %s -> %s would close path %s",
		e.TaskID, e.DependsOnID, strings.Join(e.Path, " -> "))
}
