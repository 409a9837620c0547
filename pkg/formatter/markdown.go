package formatter

import (
	"fmt"
	"strings"

	"github.com/helmcode/codelinter/pkg/model"
)

// RenderMarkdown produces a GitHub-flavoured Markdown report, suitable for
// PR comments. Every problem of a successful result appears in the output.
func RenderMarkdown(file string, result model.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Analysis of `%s`\n\n", file)

	switch r := result.(type) {
	case model.SuccessfulResult:
		writeSuccessfulMarkdown(&sb, r)
	case model.CompilationErrorResult:
		fmt.Fprintf(&sb, "**Compilation failed:** %s\n\n", mdEscape(r.Description))
		writeDiagnosticsMarkdown(&sb, r.Diagnostics)
	case model.FileClientErrorResult:
		fmt.Fprintf(&sb, "**Submission rejected:** %s\n\n", mdEscape(r.Description))
	case model.InternalErrorResult:
		fmt.Fprintf(&sb, "**Analysis service error:** %s\n\n", mdEscape(r.Description))
	case model.NetworkErrorResult:
		sb.WriteString("**Network error:** the analysis service could not be reached.\n\n")
	default:
		fmt.Fprintf(&sb, "**Analysis service error:** unrecognized result type `%s`\n\n", kindOf(result))
	}

	return sb.String()
}

func writeSuccessfulMarkdown(sb *strings.Builder, r model.SuccessfulResult) {
	s := Summarize(r)
	fmt.Fprintf(sb, "**Problems:** %d", s.Total)
	for _, p := range model.Priorities {
		fmt.Fprintf(sb, " | **%s:** %d", p, s.ByPriority[p])
	}
	sb.WriteString("\n\n")

	for _, tool := range model.Tools {
		problems := r.Problems(tool)
		if len(problems) == 0 {
			continue
		}
		fmt.Fprintf(sb, "### %s\n\n", strings.ToUpper(string(tool)))
		sb.WriteString("| Priority | Location | Category | Description |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, p := range sortedProblems(problems) {
			where := ""
			if loc, ok := p.Location(); ok {
				where = "`" + formatLocation(loc) + "`"
			}
			fmt.Fprintf(sb, "| %s | %s | %s | %s |\n", p.Priority, where, mdEscape(p.Category), mdEscape(p.Description))
		}
		sb.WriteString("\n")
	}

	writeDiagnosticsMarkdown(sb, r.Compilation.Diagnostics)
}

func writeDiagnosticsMarkdown(sb *strings.Builder, diags []model.CompilationDiagnostic) {
	if len(diags) == 0 {
		return
	}
	sb.WriteString("### Compiler diagnostics\n\n")
	for _, d := range diags {
		fmt.Fprintf(sb, "- `%s:%d:%d` %s\n", d.ClassName, d.Line, d.Column, mdEscape(d.Message))
	}
	sb.WriteString("\n")
}

// mdEscape replaces characters that would break Markdown table cells.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return s
}
