package main

import (
	"os"
	"strings"
	"testing"
)

// TestE2ECrossroadsExample exercises the full pipeline: source, engine,
// generator. This is the path the HTTP evaluate route takes.
func TestE2ECrossroadsExample(t *testing.T) {
	app := NewApp(0)

	source, err := os.ReadFile("../../examples/crossroads.road")
	if err != nil {
		t.Fatalf("failed to read crossroads.road: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if result.Result == nil {
		t.Fatal("no result")
	}

	s := result.Summary
	if s.Edges != 5 {
		t.Errorf("edges = %d, want 5", s.Edges)
	}
	// west and south are capped; east and side are linked by two curbs
	if s.Connectors != 4 {
		t.Errorf("connectors = %d, want 4", s.Connectors)
	}
	if s.Joins < 1 {
		t.Errorf("joins = %d", s.Joins)
	}
	if result.Fingerprint == "" || result.Cached {
		t.Errorf("first run: fingerprint %q cached %v", result.Fingerprint, result.Cached)
	}

	again := app.Evaluate(string(source))
	if !again.Cached || again.Fingerprint != result.Fingerprint {
		t.Errorf("second run: fingerprint %q cached %v", again.Fingerprint, again.Cached)
	}
	if again.Result != result.Result {
		t.Error("cached run should share the result")
	}
}

func TestE2EEmptySource(t *testing.T) {
	app := NewApp(0)
	result := app.Evaluate("")

	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Errorf("unexpected diagnostics: %v %v", result.Errors, result.Warnings)
	}
	// JSON should serialize as [] not null.
	if result.Errors == nil || result.Warnings == nil {
		t.Error("diagnostic slices should be non-nil")
	}
	if result.Summary.Nodes != 0 || result.Summary.Edges != 0 {
		t.Errorf("summary = %+v", result.Summary)
	}
}

func TestE2ESyntaxError(t *testing.T) {
	app := NewApp(0)
	result := app.Evaluate("(+ 1 2)\n(road \"a\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a message")
	}
	if result.Result != nil {
		t.Error("no result expected on error")
	}
}

func TestE2EBuiltinErrorMessage(t *testing.T) {
	app := NewApp(0)
	result := app.Evaluate(`(road "a" (pt 0 0) 5)`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an eval error")
	}
	if !strings.Contains(result.Errors[0].Message, "point 1") {
		t.Errorf("message = %q", result.Errors[0].Message)
	}
}

func TestE2EDuplicateTagWarning(t *testing.T) {
	app := NewApp(0)
	result := app.Evaluate(`
(road "a" (pt 0 0) (pt 10 0))
(road "a" (pt 20 0) (pt 30 0))
`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v", result.Warnings)
	}
	if result.Summary.Edges != 2 {
		t.Errorf("edges = %d", result.Summary.Edges)
	}
}

func TestE2ERecoveredFailuresAreReported(t *testing.T) {
	app := NewApp(0)
	result := app.Evaluate(`
(road "ok" (pt 0 0) (pt 10 0))
(road "lonely" (pt 5 5))
`)
	if len(result.Errors) != 0 {
		t.Fatalf("errors: %v", result.Errors)
	}
	if result.Summary.Edges != 1 || result.Summary.Failures != 1 {
		t.Errorf("summary = %+v", result.Summary)
	}
}

// TestE2ERapidEvaluation alternates valid and invalid sources on one app and
// checks that each result matches its own source.
func TestE2ERapidEvaluation(t *testing.T) {
	app := NewApp(2)

	sources := []struct {
		src   string
		fails bool
	}{
		{`(road (pt 0 0) (pt 10 0))`, false},
		{`(road "broken"`, true},
		{``, false},
		{`(undefined-func 1 2 3)`, true},
		{`;; just a comment`, false},
		{`(road (pt 0 0) (pt 0 10) :lanes 2)`, false},
		{`(params :lane-width -1)`, true},
		{`(road (pt 0 0) (pt 10 0))`, false},
	}

	for i, s := range sources {
		result := app.Evaluate(s.src)
		if got := len(result.Errors) > 0; got != s.fails {
			t.Errorf("source %d %q: errors %v", i, s.src, result.Errors)
		}
	}
	if n := app.results.Len(); n > 2 {
		t.Errorf("cache holds %d results", n)
	}
}
