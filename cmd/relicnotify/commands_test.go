package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
)

func TestEndpointCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "endpoint")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	if strings.TrimSpace(out) != env.server.URL+"/us" {
		t.Fatalf("unexpected us endpoint: %q", out)
	}
	out, _, err = env.run(t, "", "endpoint", "--eu")
	if err != nil {
		t.Fatalf("endpoint --eu: %v", err)
	}
	if strings.TrimSpace(out) != env.server.URL+"/eu" {
		t.Fatalf("unexpected eu endpoint: %q", out)
	}
}

func TestCredentialsLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := env.run(t, "", "credentials", "add", "nr", "--secret", "SUPERSECRET", "--description", "prod key"); err != nil {
		t.Fatalf("add global: %v", err)
	}
	out, _, err := env.run(t, "", "--scope", "checkout", "credentials", "add", "nr", "--secret", "JOBSECRET", "--hostname", "api.eu.newrelic.com")
	if err != nil {
		t.Fatalf("add scoped: %v", err)
	}
	requireContains(t, out, "Stored credential nr (job checkout)")

	list, _, err := env.run(t, "", "credentials", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, list, "prod key")
	requireContains(t, list, "job checkout")
	requireContains(t, list, "api.eu.newrelic.com")
	requireNotContains(t, list, "SUPERSECRET")
	requireNotContains(t, list, "JOBSECRET")

	jsonOut, _, err := env.run(t, "", "credentials", "list", "--json")
	if err != nil {
		t.Fatalf("list --json: %v", err)
	}
	requireNotContains(t, jsonOut, "SECRET")
	var views []credentialView
	if err := json.Unmarshal([]byte(jsonOut), &views); err != nil {
		t.Fatalf("decode list json: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected two credentials, got %+v", views)
	}

	info, err := os.Stat(env.cfg.Paths.CredentialsFile)
	if err != nil {
		t.Fatalf("stat credentials file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 credentials file, got %o", info.Mode().Perm())
	}

	out, _, err = env.run(t, "", "--scope", "checkout", "credentials", "remove", "nr")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	requireContains(t, out, "Removed credential nr (job checkout)")
	out, _, err = env.run(t, "", "--scope", "checkout", "credentials", "remove", "nr")
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	requireContains(t, out, "No credential nr")
}

func TestCredentialsAddRequiresSecret(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := env.run(t, "", "credentials", "add", "nr"); err == nil {
		t.Fatal("expected error without a secret")
	}
	if _, _, err := env.run(t, "\n", "credentials", "add", "nr", "--secret-stdin"); err == nil {
		t.Fatal("expected error for blank stdin secret")
	}
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := env.run(t, "", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No notifications recorded")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "US endpoint: "+env.server.URL+"/us")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, "", "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, target, "", "config", "validate"); err != nil {
		t.Fatalf("validate sample: %v", err)
	}
}

func TestInvalidConfigFailsCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[newrelic]\nrequest_timeout = -1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, err := env.run(t, "", "endpoint"); err == nil {
		t.Fatal("expected config validation error")
	}
}
