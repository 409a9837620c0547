package formatter

import (
	"sort"

	"github.com/helmcode/codelinter/pkg/model"
)

// Summary counts the problems of a successful result.
type Summary struct {
	Total       int                    `json:"total" yaml:"total"`
	ByPriority  map[model.Priority]int `json:"by_priority" yaml:"by_priority"`
	ByTool      map[model.Tool]int     `json:"by_tool" yaml:"by_tool"`
	Diagnostics int                    `json:"compilation_diagnostics" yaml:"compilation_diagnostics"`
	Highest     model.Priority         `json:"highest_priority,omitempty" yaml:"highest_priority,omitempty"`
}

func Summarize(r model.SuccessfulResult) Summary {
	s := Summary{
		ByPriority:  make(map[model.Priority]int),
		ByTool:      make(map[model.Tool]int),
		Diagnostics: len(r.Compilation.Diagnostics),
	}
	for _, tool := range model.Tools {
		problems := r.Problems(tool)
		s.ByTool[tool] = len(problems)
		s.Total += len(problems)
		for _, p := range problems {
			s.ByPriority[p.Priority]++
		}
	}
	if max, ok := r.MaxPriority(); ok {
		s.Highest = max
	}
	return s
}

// sortedProblems returns a copy of problems ordered by priority, most
// severe first, then by location. Problems without a location come after
// located ones of the same priority.
func sortedProblems(problems []model.Problem) []model.Problem {
	out := append([]model.Problem(nil), problems...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		la, okA := a.Location()
		lb, okB := b.Location()
		if okA != okB {
			return okA
		}
		if la.DisplayPath != lb.DisplayPath {
			return la.DisplayPath < lb.DisplayPath
		}
		if la.Line != lb.Line {
			return la.Line < lb.Line
		}
		return la.Column < lb.Column
	})
	return out
}
