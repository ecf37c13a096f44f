package credentials

import (
	"context"
	"os"
	"strings"
)

// EnvPrefix prefixes environment variables consulted by Env.
const EnvPrefix = "RELICNOTIFY_KEY_"

// EnvVarName returns the environment variable Env reads for id, e.g.
// "nr-prod" → "RELICNOTIFY_KEY_NR_PROD".
func EnvVarName(id string) string {
	name := strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, strings.ToUpper(strings.TrimSpace(id)))
	return EnvPrefix + name
}

// Env resolves credentials from process environment variables. It is meant
// for CI systems that inject secrets as masked variables.
type Env struct {
	Lookup func(string) (string, bool)
}

func (e Env) Resolve(_ context.Context, _ Scope, id, _ string) (Secret, bool, error) {
	if strings.TrimSpace(id) == "" {
		return Secret{}, false, nil
	}
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	value, ok := lookup(EnvVarName(id))
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return Secret{}, false, nil
	}
	return NewSecret(value), true, nil
}
