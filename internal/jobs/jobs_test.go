package jobs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"relicnotify/internal/jobs"
	"relicnotify/internal/services"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadParsesTargetsInOrder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "job.toml", `
name = "checkout"

[[deployment]]
api_key_id = "nr-prod"
application_id = "42"
revision = "${GIT_COMMIT}"
description = "Deploy"

[[deployment]]
api_key_id = "nr-eu"
entity_guid = "MXxBUE18"
deployment_type = "rolling"
deeplink = "https://ci.example/1"
european = true
`)

	job, err := jobs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if job.Name != "checkout" || job.Path != path {
		t.Fatalf("unexpected job metadata: %+v", job)
	}
	if len(job.Targets) != 2 {
		t.Fatalf("expected two targets, got %d", len(job.Targets))
	}
	first, second := job.Targets[0], job.Targets[1]
	if first.ApplicationID != "42" || first.Revision != "${GIT_COMMIT}" || first.European {
		t.Fatalf("unexpected first target: %+v", first)
	}
	if second.EntityGUID != "MXxBUE18" || second.DeploymentType != "rolling" || second.DeepLink != "https://ci.example/1" || !second.European {
		t.Fatalf("unexpected second target: %+v", second)
	}
}

func TestLoadDefaultsNameAndAllowsEmptyTargets(t *testing.T) {
	path := writeFile(t, t.TempDir(), "billing-api.toml", "")
	job, err := jobs.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if job.Name != "billing-api" || len(job.Targets) != 0 {
		t.Fatalf("unexpected job: %+v", job)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, t.TempDir(), "job.toml", "[[deployment]]\napi_key = \"x\"\n")
	_, err := jobs.Load(path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := jobs.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, services.ErrConfiguration) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped not-exist configuration error, got %v", err)
	}
}

func TestLoadEnvLayersSources(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.env", "GIT_COMMIT=abc\nSHARED=a\n")
	second := writeFile(t, dir, "b.env", "SHARED=b\nQUOTED=\"hello world\"\n")

	env, err := jobs.LoadEnv(jobs.EnvOptions{
		Inherit: true,
		Files:   []string{first, "", second},
		Environ: func() []string { return []string{"HOME=/home/ci", "SHARED=process", "BROKEN"} },
	})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	want := map[string]string{"HOME": "/home/ci", "GIT_COMMIT": "abc", "SHARED": "b", "QUOTED": "hello world"}
	if len(env) != len(want) {
		t.Fatalf("env = %v, want %v", env, want)
	}
	for k, v := range want {
		if env[k] != v {
			t.Fatalf("env[%s] = %q, want %q", k, env[k], v)
		}
	}
}

func TestLoadEnvWithoutInherit(t *testing.T) {
	t.Setenv("RELICNOTIFY_TEST_ONLY", "1")
	env, err := jobs.LoadEnv(jobs.EnvOptions{})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if len(env) != 0 {
		t.Fatalf("expected empty env, got %v", env)
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	_, err := jobs.LoadEnv(jobs.EnvOptions{Files: []string{filepath.Join(t.TempDir(), "none.env")}})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestParseVars(t *testing.T) {
	vars, err := jobs.ParseVars([]string{"REV=abc", "URL=https://x?a=b", " EMPTY ="})
	if err != nil {
		t.Fatalf("ParseVars: %v", err)
	}
	if vars["REV"] != "abc" || vars["URL"] != "https://x?a=b" || vars["EMPTY"] != "" {
		t.Fatalf("unexpected vars: %v", vars)
	}
	for _, bad := range []string{"NOEQUALS", "=value"} {
		if _, err := jobs.ParseVars([]string{bad}); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("ParseVars(%q) expected validation error, got %v", bad, err)
		}
	}
}
