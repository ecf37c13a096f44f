package dispatch

import (
	"errors"
	"testing"

	"relicnotify/internal/credentials"
	"relicnotify/internal/services"
)

func TestParseBuildResult(t *testing.T) {
	tests := map[string]BuildResult{
		"":          ResultSuccess,
		"success":   ResultSuccess,
		" Unstable": ResultUnstable,
		"FAILURE":   ResultFailure,
		"aborted":   ResultAborted,
		"not-built": ResultNotBuilt,
	}
	for in, want := range tests {
		got, err := ParseBuildResult(in)
		if err != nil {
			t.Fatalf("ParseBuildResult(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseBuildResult(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseBuildResult("green"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildEnvironmentDoesNotMutateInputs(t *testing.T) {
	build := Build{
		Env:       map[string]string{"A": "env", "B": "env"},
		Variables: map[string]string{"A": "var"},
	}
	merged := build.environment(true)
	if merged["A"] != "var" || merged["B"] != "env" {
		t.Fatalf("unexpected merge: %v", merged)
	}
	if build.Env["A"] != "env" {
		t.Fatal("environment mutated the build env")
	}
	if plain := build.environment(false); plain["A"] != "env" {
		t.Fatalf("unexpected plain env: %v", plain)
	}
}

func TestBuildScopeIsTrimmedJob(t *testing.T) {
	if got := (Build{Job: "  checkout "}).Scope(); got != credentials.Scope("checkout") {
		t.Fatalf("Scope() = %q, want checkout", got)
	}
	if got := (Build{}).Scope(); got != credentials.GlobalScope {
		t.Fatalf("Scope() = %q, want global scope", got)
	}
}
