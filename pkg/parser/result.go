// Package parser decodes analysis service responses into model values.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/helmcode/codelinter/pkg/model"
)

var (
	// ErrNotJSON is returned when the body is not valid JSON at all.
	ErrNotJSON = errors.New("parser: response body is not JSON")
	// ErrMalformed is returned when the body is JSON but does not have the
	// shape of its declared result type.
	ErrMalformed = errors.New("parser: malformed result")
	// ErrIncomplete is returned when a successful result lacks one of its
	// tool sections.
	ErrIncomplete = errors.New("parser: incomplete successful result")
)

// UnknownTypeError is returned for a JSON object whose type is not one of
// the documented result types. Message carries any "message" or "error"
// text found in the body, which is what HTTP frameworks put in their own
// error documents.
type UnknownTypeError struct {
	Type    string
	Message string
}

func (e *UnknownTypeError) Error() string {
	if e.Type == "" {
		return "parser: response has no result type"
	}
	return fmt.Sprintf("parser: unknown result type %q", e.Type)
}

type wireTool struct {
	Problems []model.Problem `json:"problems"`
}

type wireCompilation struct {
	Diagnostics []model.CompilationDiagnostic `json:"diagnostics"`
}

type wireResult struct {
	Type        string                        `json:"type"`
	Description string                        `json:"description"`
	Diagnostics []model.CompilationDiagnostic `json:"diagnostics"`
	Spoon       *wireTool                     `json:"spoon"`
	PMD         *wireTool                     `json:"pmd"`
	SpotBugs    *wireTool                     `json:"spotbugs"`
	CPD         *wireTool                     `json:"cpd"`
	Compilation *wireCompilation              `json:"compilation"`
	Message     string                        `json:"message"`
	Error       string                        `json:"error"`
}

// ParseResult decodes a response body into a Result.
//
// NetworkErrorResult is never produced here: it has no wire form and a body
// claiming it is reported as an UnknownTypeError.
func ParseResult(data []byte) (model.Result, error) {
	if !json.Valid(data) {
		return nil, ErrNotJSON
	}

	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch model.ResultType(w.Type) {
	case model.ResultSuccessful:
		return successful(&w)
	case model.ResultCompilationError:
		return model.CompilationErrorResult{
			Description: w.Description,
			Diagnostics: normalizeDiagnostics(w.Diagnostics, false),
		}, nil
	case model.ResultFileClientError:
		return model.FileClientErrorResult{Description: w.Description}, nil
	case model.ResultInternalError:
		return model.InternalErrorResult{Description: w.Description}, nil
	default:
		msg := w.Message
		if msg == "" {
			msg = w.Error
		}
		return nil, &UnknownTypeError{Type: w.Type, Message: msg}
	}
}

func successful(w *wireResult) (model.Result, error) {
	missing := ""
	switch {
	case w.Spoon == nil:
		missing = string(model.ToolSpoon)
	case w.PMD == nil:
		missing = string(model.ToolPMD)
	case w.SpotBugs == nil:
		missing = string(model.ToolSpotBugs)
	case w.CPD == nil:
		missing = string(model.ToolCPD)
	case w.Compilation == nil:
		missing = "compilation"
	}
	if missing != "" {
		return nil, fmt.Errorf("%w: missing %s section", ErrIncomplete, missing)
	}

	return model.SuccessfulResult{
		Spoon:    model.ToolResult{Problems: normalizeProblems(w.Spoon.Problems)},
		PMD:      model.ToolResult{Problems: normalizeProblems(w.PMD.Problems)},
		SpotBugs: model.ToolResult{Problems: normalizeProblems(w.SpotBugs.Problems)},
		CPD:      model.ToolResult{Problems: normalizeProblems(w.CPD.Problems)},
		Compilation: model.CompilationResult{
			Diagnostics: normalizeDiagnostics(w.Compilation.Diagnostics, true),
		},
	}, nil
}
