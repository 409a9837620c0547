// Package model holds the diagnostic shapes shared by the transport, the
// session and the formatters.
package model

import (
	"errors"
	"strings"
)

// ErrEmptyFile is returned when a File carries no payload or no name.
var ErrEmptyFile = errors.New("model: file must have a name and a non-empty payload")

// Priority classifies how urgent a problem is.
type Priority string

const (
	PrioritySevere         Priority = "SEVERE"
	PriorityPossibleSevere Priority = "POSSIBLE_SEVERE"
	PriorityFixRecommended Priority = "FIX_RECOMMENDED"
	PriorityInfo           Priority = "INFO"
)

// Priorities lists the known priorities from most to least severe.
var Priorities = []Priority{
	PrioritySevere,
	PriorityPossibleSevere,
	PriorityFixRecommended,
	PriorityInfo,
}

// Rank orders priorities by severity. SEVERE ranks highest; unknown values
// rank below INFO.
func (p Priority) Rank() int {
	switch p {
	case PrioritySevere:
		return 4
	case PriorityPossibleSevere:
		return 3
	case PriorityFixRecommended:
		return 2
	case PriorityInfo:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether p is as severe as other or more.
func (p Priority) AtLeast(other Priority) bool {
	return p.Rank() >= other.Rank()
}

// Known reports whether p is one of the documented priorities.
func (p Priority) Known() bool {
	return p.Rank() > 0
}

// ParsePriority accepts a priority name in any case, with '-' or '_'.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	return p, p.Known()
}

// ProblemType is the discriminant of a Problem.
type ProblemType string

// InCodeProblemType marks a problem that carries a source location.
const InCodeProblemType ProblemType = "InCodeTransferProblem"

// Problem is a single finding reported by one analysis tool.
//
// Every variant carries the common fields. The location fields are only
// populated for InCodeProblemType; other variants leave them zero and are
// rendered from the common fields alone.
type Problem struct {
	Type        ProblemType `json:"type" yaml:"type"`
	Description string      `json:"description" yaml:"description"`
	Category    string      `json:"category" yaml:"category"`
	Explanation string      `json:"explanation" yaml:"explanation"`
	Priority    Priority    `json:"priority" yaml:"priority"`
	FilePath    string      `json:"filePath,omitempty" yaml:"filePath,omitempty"`
	DisplayPath string      `json:"displayPath,omitempty" yaml:"displayPath,omitempty"`
	Line        int         `json:"line,omitempty" yaml:"line,omitempty"`
	Column      int         `json:"column,omitempty" yaml:"column,omitempty"`
}

// Location is the position of an in-code problem.
type Location struct {
	FilePath    string
	DisplayPath string
	Line        int
	Column      int
}

// NewInCodeProblem builds a located problem.
func NewInCodeProblem(description, category, explanation string, priority Priority, loc Location) Problem {
	return Problem{
		Type:        InCodeProblemType,
		Description: description,
		Category:    category,
		Explanation: explanation,
		Priority:    priority,
		FilePath:    loc.FilePath,
		DisplayPath: loc.DisplayPath,
		Line:        loc.Line,
		Column:      loc.Column,
	}
}

// Location returns the source position when the problem is an in-code one.
func (p Problem) Location() (Location, bool) {
	if p.Type != InCodeProblemType {
		return Location{}, false
	}
	return Location{
		FilePath:    p.FilePath,
		DisplayPath: p.DisplayPath,
		Line:        p.Line,
		Column:      p.Column,
	}, true
}

// CompilationDiagnostic is a per-unit compiler message.
type CompilationDiagnostic struct {
	Message   string `json:"message" yaml:"message"`
	Line      int    `json:"line" yaml:"line"`
	Column    int    `json:"column" yaml:"column"`
	ClassName string `json:"className" yaml:"className"`
}

// File is the payload submitted for analysis.
type File struct {
	Name string
	Data []byte
}

// Validate checks the upload constraints. Content is not inspected.
func (f File) Validate() error {
	if f.Name == "" || len(f.Data) == 0 {
		return ErrEmptyFile
	}
	return nil
}

// Size returns the payload length in bytes.
func (f File) Size() int {
	return len(f.Data)
}
