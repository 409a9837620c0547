package parser

import "github.com/helmcode/codelinter/pkg/model"

// clamp maps the service's invalid positions (zero or negative) to 1 so no
// renderer ever indexes with them.
func clamp(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// normalizeProblems clamps in-code positions and never returns nil.
// Problems of other types keep their fields untouched.
func normalizeProblems(in []model.Problem) []model.Problem {
	out := make([]model.Problem, 0, len(in))
	for _, p := range in {
		if p.Type == model.InCodeProblemType {
			p.Line = clamp(p.Line)
			p.Column = clamp(p.Column)
		}
		out = append(out, p)
	}
	return out
}

func normalizeDiagnostics(in []model.CompilationDiagnostic, keepEmpty bool) []model.CompilationDiagnostic {
	if len(in) == 0 {
		if keepEmpty {
			return []model.CompilationDiagnostic{}
		}
		return nil
	}
	out := make([]model.CompilationDiagnostic, 0, len(in))
	for _, d := range in {
		d.Line = clamp(d.Line)
		d.Column = clamp(d.Column)
		out = append(out, d)
	}
	return out
}
