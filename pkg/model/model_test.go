package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestPriority_Rank(t *testing.T) {
	for i := 1; i < len(Priorities); i++ {
		if Priorities[i-1].Rank() <= Priorities[i].Rank() {
			t.Errorf("%s should rank above %s", Priorities[i-1], Priorities[i])
		}
	}
	if Priority("WHATEVER").Rank() >= PriorityInfo.Rank() {
		t.Error("unknown priority should rank below INFO")
	}
	if !PrioritySevere.AtLeast(PriorityFixRecommended) {
		t.Error("SEVERE should be at least FIX_RECOMMENDED")
	}
	if PriorityInfo.AtLeast(PriorityPossibleSevere) {
		t.Error("INFO should not be at least POSSIBLE_SEVERE")
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
		ok   bool
	}{
		{"severe", PrioritySevere, true},
		{"possible-severe", PriorityPossibleSevere, true},
		{" FIX_RECOMMENDED ", PriorityFixRecommended, true},
		{"Info", PriorityInfo, true},
		{"loud", Priority("LOUD"), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePriority(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParsePriority(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestProblem_Location(t *testing.T) {
	p := NewInCodeProblem("Unused variable", "Style", "...", PriorityInfo, Location{
		FilePath: "src/Main.java", DisplayPath: "Main.java", Line: 10, Column: 5,
	})
	loc, ok := p.Location()
	if !ok {
		t.Fatal("in-code problem should have a location")
	}
	if loc.Line != 10 || loc.Column != 5 || loc.DisplayPath != "Main.java" {
		t.Errorf("unexpected location %+v", loc)
	}

	other := Problem{Type: "GlobalProblem", Description: "d", Priority: PriorityInfo}
	if _, ok := other.Location(); ok {
		t.Error("non in-code problem should not report a location")
	}
}

func TestFile_Validate(t *testing.T) {
	if err := (File{Name: "Main.java", Data: []byte("class Main {}")}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (File{Name: "Main.java"}).Validate(); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile for empty payload, got %v", err)
	}
	if err := (File{Data: []byte("x")}).Validate(); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile for missing name, got %v", err)
	}
}

func TestSuccessfulResult_Counts(t *testing.T) {
	r := SuccessfulResult{
		Spoon: ToolResult{Problems: []Problem{{Priority: PriorityInfo}}},
		PMD:   ToolResult{Problems: []Problem{{Priority: PrioritySevere}, {Priority: PriorityFixRecommended}}},
	}
	if got := r.ProblemCount(); got != 3 {
		t.Errorf("ProblemCount = %d, want 3", got)
	}
	max, ok := r.MaxPriority()
	if !ok || max != PrioritySevere {
		t.Errorf("MaxPriority = %q, %v; want SEVERE, true", max, ok)
	}
	if _, ok := (SuccessfulResult{}).MaxPriority(); ok {
		t.Error("empty result should have no max priority")
	}
}

func TestResult_MarshalJSONCarriesType(t *testing.T) {
	results := []Result{
		SuccessfulResult{},
		CompilationErrorResult{Description: "boom"},
		FileClientErrorResult{Description: "bad zip"},
		InternalErrorResult{Description: "io"},
		NetworkErrorResult{},
	}
	for _, r := range results {
		t.Run(string(r.Kind()), func(t *testing.T) {
			b, err := json.Marshal(r)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var env struct {
				Type        string `json:"type"`
				Description string `json:"description"`
			}
			if err := json.Unmarshal(b, &env); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if env.Type != string(r.Kind()) {
				t.Errorf("type = %q, want %q", env.Type, r.Kind())
			}
			if env.Description != Description(r) {
				t.Errorf("description = %q, want %q", env.Description, Description(r))
			}
		})
	}
}

func TestResult_MarshalYAMLCarriesType(t *testing.T) {
	b, err := yaml.Marshal(InternalErrorResult{Description: "disk full"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, "type: InternalErrorResult") || !strings.Contains(out, "description: disk full") {
		t.Errorf("unexpected yaml:\n%s", out)
	}
}

func TestInternalAndClientErrorsAreDistinct(t *testing.T) {
	if ResultInternalError == ResultFileClientError {
		t.Fatal("internal and file client error discriminants must differ")
	}
}
