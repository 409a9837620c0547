package model

import "encoding/json"

// ResultType is the discriminant of a Result.
type ResultType string

const (
	ResultSuccessful       ResultType = "SuccessfulResult"
	ResultCompilationError ResultType = "CompilationErrorResult"
	ResultFileClientError  ResultType = "FileClientErrorResult"
	ResultInternalError    ResultType = "InternalErrorResult"
	// ResultNetworkError has no wire representation; it is produced locally
	// when no parseable response was received.
	ResultNetworkError ResultType = "NetworkErrorResult"
)

// Result is the outcome of one analysis attempt. It is implemented only by
// the five result structs in this package.
type Result interface {
	Kind() ResultType
	isResult()
}

// Tool names the analysis tools whose findings a SuccessfulResult carries.
type Tool string

const (
	ToolSpoon    Tool = "spoon"
	ToolPMD      Tool = "pmd"
	ToolSpotBugs Tool = "spotbugs"
	ToolCPD      Tool = "cpd"
)

// Tools lists the tools in report order.
var Tools = []Tool{ToolSpoon, ToolPMD, ToolSpotBugs, ToolCPD}

// ToolResult holds the problems one tool reported.
type ToolResult struct {
	Problems []Problem `json:"problems" yaml:"problems"`
}

// CompilationResult holds the compiler diagnostics of a successful build.
type CompilationResult struct {
	Diagnostics []CompilationDiagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// SuccessfulResult carries the findings of every tool.
type SuccessfulResult struct {
	Spoon       ToolResult        `json:"spoon" yaml:"spoon"`
	PMD         ToolResult        `json:"pmd" yaml:"pmd"`
	SpotBugs    ToolResult        `json:"spotbugs" yaml:"spotbugs"`
	CPD         ToolResult        `json:"cpd" yaml:"cpd"`
	Compilation CompilationResult `json:"compilation" yaml:"compilation"`
}

// CompilationErrorResult means the source did not compile, so no tool ran.
type CompilationErrorResult struct {
	Description string                  `json:"description" yaml:"description"`
	Diagnostics []CompilationDiagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

// FileClientErrorResult means the service rejected the submission itself.
type FileClientErrorResult struct {
	Description string `json:"description" yaml:"description"`
}

// InternalErrorResult means the service failed on a valid request.
type InternalErrorResult struct {
	Description string `json:"description" yaml:"description"`
}

// NetworkErrorResult means no usable response came back.
type NetworkErrorResult struct{}

func (SuccessfulResult) Kind() ResultType       { return ResultSuccessful }
func (CompilationErrorResult) Kind() ResultType { return ResultCompilationError }
func (FileClientErrorResult) Kind() ResultType  { return ResultFileClientError }
func (InternalErrorResult) Kind() ResultType    { return ResultInternalError }
func (NetworkErrorResult) Kind() ResultType     { return ResultNetworkError }

func (SuccessfulResult) isResult()       {}
func (CompilationErrorResult) isResult() {}
func (FileClientErrorResult) isResult()  {}
func (InternalErrorResult) isResult()    {}
func (NetworkErrorResult) isResult()     {}

// Problems returns the problems reported by tool.
func (r SuccessfulResult) Problems(tool Tool) []Problem {
	switch tool {
	case ToolSpoon:
		return r.Spoon.Problems
	case ToolPMD:
		return r.PMD.Problems
	case ToolSpotBugs:
		return r.SpotBugs.Problems
	case ToolCPD:
		return r.CPD.Problems
	default:
		return nil
	}
}

// ProblemCount returns the number of problems across all tools.
func (r SuccessfulResult) ProblemCount() int {
	n := 0
	for _, tool := range Tools {
		n += len(r.Problems(tool))
	}
	return n
}

// MaxPriority returns the most severe priority reported, and false when
// there are no problems.
func (r SuccessfulResult) MaxPriority() (Priority, bool) {
	var best Priority
	found := false
	for _, tool := range Tools {
		for _, p := range r.Problems(tool) {
			if !found || p.Priority.Rank() > best.Rank() {
				best = p.Priority
				found = true
			}
		}
	}
	return best, found
}

// Description returns the human-readable text of a failure result. It is
// empty for SuccessfulResult and NetworkErrorResult.
func Description(r Result) string {
	switch v := r.(type) {
	case CompilationErrorResult:
		return v.Description
	case FileClientErrorResult:
		return v.Description
	case InternalErrorResult:
		return v.Description
	default:
		return ""
	}
}

// The result structs carry no type field of their own; the discriminant is
// added when they are encoded.

func (r SuccessfulResult) MarshalJSON() ([]byte, error) {
	type Body SuccessfulResult
	return json.Marshal(struct {
		Type ResultType `json:"type"`
		Body
	}{r.Kind(), Body(r)})
}

func (r CompilationErrorResult) MarshalJSON() ([]byte, error) {
	type Body CompilationErrorResult
	return json.Marshal(struct {
		Type ResultType `json:"type"`
		Body
	}{r.Kind(), Body(r)})
}

func (r FileClientErrorResult) MarshalJSON() ([]byte, error) {
	type Body FileClientErrorResult
	return json.Marshal(struct {
		Type ResultType `json:"type"`
		Body
	}{r.Kind(), Body(r)})
}

func (r InternalErrorResult) MarshalJSON() ([]byte, error) {
	type Body InternalErrorResult
	return json.Marshal(struct {
		Type ResultType `json:"type"`
		Body
	}{r.Kind(), Body(r)})
}

func (r NetworkErrorResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type ResultType `json:"type"`
	}{r.Kind()})
}

func (r SuccessfulResult) MarshalYAML() (interface{}, error) {
	type Body SuccessfulResult
	return struct {
		Type ResultType `yaml:"type"`
		Body `yaml:",inline"`
	}{r.Kind(), Body(r)}, nil
}

func (r CompilationErrorResult) MarshalYAML() (interface{}, error) {
	type Body CompilationErrorResult
	return struct {
		Type ResultType `yaml:"type"`
		Body `yaml:",inline"`
	}{r.Kind(), Body(r)}, nil
}

func (r FileClientErrorResult) MarshalYAML() (interface{}, error) {
	type Body FileClientErrorResult
	return struct {
		Type ResultType `yaml:"type"`
		Body `yaml:",inline"`
	}{r.Kind(), Body(r)}, nil
}

func (r InternalErrorResult) MarshalYAML() (interface{}, error) {
	type Body InternalErrorResult
	return struct {
		Type ResultType `yaml:"type"`
		Body `yaml:",inline"`
	}{r.Kind(), Body(r)}, nil
}

func (r NetworkErrorResult) MarshalYAML() (interface{}, error) {
	return struct {
		Type ResultType `yaml:"type"`
	}{r.Kind()}, nil
}
