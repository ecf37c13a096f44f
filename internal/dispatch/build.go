package dispatch

import (
	"fmt"
	"maps"
	"strings"

	"relicnotify/internal/credentials"
	"relicnotify/internal/services"
)

// BuildResult is the outcome of the build that triggered a dispatch.
type BuildResult string

const (
	ResultSuccess  BuildResult = "SUCCESS"
	ResultUnstable BuildResult = "UNSTABLE"
	ResultFailure  BuildResult = "FAILURE"
	ResultAborted  BuildResult = "ABORTED"
	ResultNotBuilt BuildResult = "NOT_BUILT"
)

// ParseBuildResult accepts a result name in any case. Blank input is treated
// as SUCCESS.
func ParseBuildResult(value string) (BuildResult, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	switch BuildResult(normalized) {
	case "":
		return ResultSuccess, nil
	case ResultSuccess, ResultUnstable, ResultFailure, ResultAborted, ResultNotBuilt:
		return BuildResult(normalized), nil
	default:
		return "", services.Wrap(services.ErrValidation, "dispatch", "parse build result",
			fmt.Sprintf("unknown build result %q", value), nil)
	}
}

// Unsuccessful reports whether notifications should be skipped for r.
func (r BuildResult) Unsuccessful() bool {
	return r == ResultFailure || r == ResultAborted
}

// Build describes the build a dispatch runs for.
type Build struct {
	// Job names the job; it scopes credential lookups and tags logs.
	Job    string
	Result BuildResult
	// Env is the build's environment snapshot.
	Env map[string]string
	// Variables are build parameters. Only Perform overlays them on Env.
	Variables map[string]string
}

// Scope returns the credential scope of the build's job.
func (b Build) Scope() credentials.Scope {
	return credentials.Scope(strings.TrimSpace(b.Job))
}

func (b Build) environment(withVariables bool) map[string]string {
	env := make(map[string]string, len(b.Env)+len(b.Variables))
	maps.Copy(env, b.Env)
	if withVariables {
		maps.Copy(env, b.Variables)
	}
	return env
}
