package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/helmcode/codelinter/pkg/model"
)

// Report is the machine-readable document written for json and yaml output.
type Report struct {
	File    string       `json:"file" yaml:"file"`
	Result  model.Result `json:"result" yaml:"result"`
	Summary *Summary     `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func NewReport(file string, result model.Result) *Report {
	r := &Report{File: file, Result: result}
	if ok, isOK := result.(model.SuccessfulResult); isOK {
		s := Summarize(ok)
		r.Summary = &s
	}
	return r
}

// DisplayResult writes result for file to w in the given format.
func DisplayResult(w io.Writer, file string, result model.Result, format string) error {
	switch format {
	case "json":
		return displayJSON(w, NewReport(file, result))
	case "yaml":
		return displayYAML(w, NewReport(file, result))
	case "markdown":
		_, err := io.WriteString(w, RenderMarkdown(file, result))
		return err
	case "human":
		fallthrough
	default:
		displayHuman(w, file, result)
	}
	return nil
}

func displayJSON(w io.Writer, report *Report) error {
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("formatter: json marshal: %w", err)
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, report *Report) error {
	output, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("formatter: yaml marshal: %w", err)
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, file string, result model.Result) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)

	switch r := result.(type) {
	case model.SuccessfulResult:
		displaySuccessful(w, file, r)

	case model.CompilationErrorResult:
		red.Fprintln(w, "✗ COMPILATION FAILED")
		fmt.Fprintf(w, "   %s\n", r.Description)
		if len(r.Diagnostics) > 0 {
			fmt.Fprintln(w)
			displayDiagnostics(w, r.Diagnostics)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "   %s\n", color.HiBlackString("No analysis tool ran because the source did not compile."))

	case model.FileClientErrorResult:
		yellow.Fprintln(w, "✗ SUBMISSION REJECTED")
		fmt.Fprintf(w, "   %s\n", r.Description)

	case model.InternalErrorResult:
		red.Fprintln(w, "✗ ANALYSIS SERVICE ERROR")
		fmt.Fprintf(w, "   %s\n", r.Description)

	case model.NetworkErrorResult:
		red.Fprintln(w, "✗ NETWORK ERROR")
		fmt.Fprintln(w, "   The analysis service could not be reached or sent an unreadable response.")
		fmt.Fprintf(w, "   %s\n", color.HiBlackString("Check the endpoint and try again."))

	default:
		red.Fprintln(w, "✗ ANALYSIS SERVICE ERROR")
		fmt.Fprintf(w, "   Unrecognized result type %q\n", kindOf(result))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("─", 80))
	cyan.Fprint(w, "💡 ")
	fmt.Fprintln(w, color.HiBlackString("Run with -o json, -o yaml or -o markdown for machine-readable output"))
}

func displaySuccessful(w io.Writer, file string, r model.SuccessfulResult) {
	white := color.New(color.FgWhite, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	summary := Summarize(r)

	if summary.Total == 0 {
		green.Fprintf(w, "✓ NO PROBLEMS FOUND in %s\n", file)
	} else {
		white.Fprintf(w, "📊 %d PROBLEMS in %s\n", summary.Total, file)
		for _, p := range model.Priorities {
			if n := summary.ByPriority[p]; n > 0 {
				fmt.Fprintf(w, "   %s %-16s %d\n", getPriorityIcon(p), p, n)
			}
		}
	}
	fmt.Fprintln(w)

	for _, tool := range model.Tools {
		problems := r.Problems(tool)
		if len(problems) == 0 {
			continue
		}
		cyan.Fprintf(w, "🔍 %s (%d)\n", strings.ToUpper(string(tool)), len(problems))
		for i, p := range sortedProblems(problems) {
			getPriorityColor(p.Priority).Fprintf(w, "   %d. %s [%s] ", i+1, getPriorityIcon(p.Priority), p.Priority)
			fmt.Fprintln(w, p.Description)
			if loc, ok := p.Location(); ok {
				fmt.Fprintf(w, "      at %s\n", color.YellowString(formatLocation(loc)))
			}
			if p.Category != "" {
				fmt.Fprintf(w, "      Category: %s\n", p.Category)
			}
			if p.Explanation != "" {
				fmt.Fprintln(w, wrapText("Why: "+p.Explanation, 80, "      "))
			}
			fmt.Fprintln(w)
		}
	}

	if len(r.Compilation.Diagnostics) > 0 {
		displayDiagnostics(w, r.Compilation.Diagnostics)
		fmt.Fprintln(w)
	}
}

func displayDiagnostics(w io.Writer, diags []model.CompilationDiagnostic) {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(w, "⚠️  COMPILER DIAGNOSTICS (%d)\n", len(diags))
	for i, d := range diags {
		fmt.Fprintf(w, "   %d. %s:%d:%d %s\n", i+1, d.ClassName, d.Line, d.Column, d.Message)
	}
}

func formatLocation(loc model.Location) string {
	path := loc.DisplayPath
	if path == "" {
		path = loc.FilePath
	}
	return fmt.Sprintf("%s:%d:%d", path, loc.Line, loc.Column)
}

func kindOf(r model.Result) string {
	if r == nil {
		return ""
	}
	return string(r.Kind())
}

func getPriorityColor(p model.Priority) *color.Color {
	switch p {
	case model.PrioritySevere:
		return color.New(color.FgRed, color.Bold)
	case model.PriorityPossibleSevere:
		return color.New(color.FgRed)
	case model.PriorityFixRecommended:
		return color.New(color.FgYellow)
	case model.PriorityInfo:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func getPriorityIcon(p model.Priority) string {
	switch p {
	case model.PrioritySevere:
		return "🔴"
	case model.PriorityPossibleSevere:
		return "🟠"
	case model.PriorityFixRecommended:
		return "🟡"
	case model.PriorityInfo:
		return "🟢"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
