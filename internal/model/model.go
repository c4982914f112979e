// Package model defines the task and dependency records shared across taskgraph.
package model

import (
	"fmt"
	"strings"
)

// Complexity is a coarse sizing label for a task. It drives how many phase
// subtasks a decomposition produces and has no ordering semantics.
type Complexity string

// Known complexity tiers.
const (
	ComplexitySimple      Complexity = "simple"
	ComplexityModerate    Complexity = "moderate"
	ComplexityComplex     Complexity = "complex"
	ComplexityVeryComplex Complexity = "very_complex"
)

// Valid reports whether c is a known complexity tier.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex, ComplexityVeryComplex:
		return true
	}
	return false
}

// DependencyType categorizes an edge between two tasks. Only required edges
// participate in cycle detection and execution ordering; optional and parallel
// edges are advisory.
type DependencyType string

// Known dependency types.
const (
	DependencyRequired DependencyType = "required"
	DependencyOptional DependencyType = "optional"
	DependencyParallel DependencyType = "parallel"
)

// Valid reports whether t is a known dependency type.
func (t DependencyType) Valid() bool {
	switch t {
	case DependencyRequired, DependencyOptional, DependencyParallel:
		return true
	}
	return false
}

// Task describes a task record. ParentID is used for hierarchical grouping
// only; execution ordering comes from dependencies.
type Task struct {
	ID              string     `json:"id"                yaml:"id"`
	ParentID        string     `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Title           string     `json:"title"             yaml:"title"`
	Description     string     `json:"description,omitempty" yaml:"description,omitempty"`
	Complexity      Complexity `json:"complexity"        yaml:"complexity"`
	EstimatedEffort float64    `json:"estimated_effort"  yaml:"estimated_effort"`
	DepthLevel      int        `json:"depth_level"       yaml:"depth_level"`
	CreatedAt       string     `json:"created_at"        yaml:"created_at"`
}

// Validate checks the fields a caller controls. DepthLevel and CreatedAt are
// assigned by the store.
func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("task title is required")
	}
	if !t.Complexity.Valid() {
		return fmt.Errorf("invalid complexity %q", t.Complexity)
	}
	if t.EstimatedEffort < 0 {
		return fmt.Errorf("estimated effort must be >= 0")
	}
	return nil
}

// Dependency is a directed edge: TaskID depends on DependsOnID.
type Dependency struct {
	TaskID      string         `json:"task_id"       yaml:"task_id"`
	DependsOnID string         `json:"depends_on_id" yaml:"depends_on_id"`
	Type        DependencyType `json:"type"          yaml:"type"`
	CreatedAt   string         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Validate checks edge fields before any store access.
func (d Dependency) Validate() error {
	if strings.TrimSpace(d.TaskID) == "" || strings.TrimSpace(d.DependsOnID) == "" {
		return fmt.Errorf("both edge endpoints are required")
	}
	if !d.Type.Valid() {
		return fmt.Errorf("invalid dependency type %q", d.Type)
	}
	return nil
}

// TaskNode is a task with its outgoing dependencies and child subtree.
type TaskNode struct {
	Task         Task         `json:"task"                   yaml:"task"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Children     []*TaskNode  `json:"children,omitempty"     yaml:"children,omitempty"`
}

// ExecutionPlan is the planner output. Order is the flat concatenation of
// Levels; each level is a batch of tasks whose required predecessors all sit
// in strictly earlier levels.
type ExecutionPlan struct {
	Order  []string   `json:"order"  yaml:"order"`
	Levels [][]string `json:"levels" yaml:"levels"`
}

// EffortEstimate aggregates effort over a task subtree.
type EffortEstimate struct {
	TaskID             string  `json:"task_id"              yaml:"task_id"`
	TotalEffort        float64 `json:"total_effort"         yaml:"total_effort"`
	TaskCount          int     `json:"task_count"           yaml:"task_count"`
	CriticalPathLength int     `json:"critical_path_length" yaml:"critical_path_length"`
	EstimatedDays      float64 `json:"estimated_days"       yaml:"estimated_days"`
}
