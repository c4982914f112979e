package decompose

import (
	"fmt"
	"strings"

	"github.com/metalagman/taskgraph/internal/model"
)

// DefaultPhaseEffort is the per-phase effort estimate in hours assigned to
// generated subtasks. Policy constant; override with WithPhaseEffort.
const DefaultPhaseEffort = 4.0

// Phase is one entry of the decomposition template list.
type Phase struct {
	Name  string
	Title string
}

// Description renders the generated subtask description for the phase.
func (p Phase) Description() string {
	return fmt.Sprintf("Complete the %s phase", strings.ReplaceAll(p.Name, "_", " "))
}

// DefaultPhases is the standard project phase template list, truncated per
// the root task's complexity at decomposition time.
func DefaultPhases() []Phase {
	return []Phase{
		{Name: "research_and_planning", Title: "Research And Planning"},
		{Name: "design_and_architecture", Title: "Design And Architecture"},
		{Name: "implementation_core", Title: "Implementation Core"},
		{Name: "implementation_features", Title: "Implementation Features"},
		{Name: "testing_and_validation", Title: "Testing And Validation"},
		{Name: "documentation", Title: "Documentation"},
		{Name: "review_and_refinement", Title: "Review And Refinement"},
		{Name: "deployment_and_monitoring", Title: "Deployment And Monitoring"},
	}
}

// PhasesFromNames builds a template list from configured phase names. Titles
// are derived from the name.
func PhasesFromNames(names []string) []Phase {
	out := make([]Phase, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Phase{Name: name, Title: titleFromName(name)})
	}
	return out
}

func titleFromName(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// defaultPhaseCounts maps complexity tiers to the number of template phases a
// decomposition produces. Policy constant, not an algorithm.
func defaultPhaseCounts() map[model.Complexity]int {
	return map[model.Complexity]int{
		model.ComplexitySimple:      2,
		model.ComplexityModerate:    3,
		model.ComplexityComplex:     5,
		model.ComplexityVeryComplex: 8,
	}
}
