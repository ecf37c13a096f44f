package jobs

import (
	"fmt"
	"maps"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"relicnotify/internal/services"
)

// EnvOptions controls how a build environment snapshot is assembled.
type EnvOptions struct {
	// Inherit seeds the snapshot with the process environment.
	Inherit bool
	// Files are dotenv files applied in order; later files win.
	Files []string
	// Environ overrides os.Environ when Inherit is set.
	Environ func() []string
}

// LoadEnv builds the environment snapshot templates resolve against.
func LoadEnv(opts EnvOptions) (map[string]string, error) {
	env := make(map[string]string)
	if opts.Inherit {
		environ := opts.Environ
		if environ == nil {
			environ = os.Environ
		}
		for _, kv := range environ() {
			key, value, ok := strings.Cut(kv, "=")
			if ok && key != "" {
				env[key] = value
			}
		}
	}
	for _, path := range opts.Files {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "jobs", "load env", "read env file "+path, err)
		}
		maps.Copy(env, values)
	}
	return env, nil
}

// ParseVars turns KEY=VALUE pairs into a map. Values may contain '='.
func ParseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, services.Wrap(services.ErrValidation, "jobs", "parse vars",
				fmt.Sprintf("expected KEY=VALUE, got %q", pair), nil)
		}
		vars[key] = value
	}
	return vars, nil
}
