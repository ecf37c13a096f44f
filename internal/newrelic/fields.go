package newrelic

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"relicnotify/internal/services"
)

// DeploymentTypes lists the values NerdGraph accepts for deploymentType.
var DeploymentTypes = []string{"BASIC", "BLUE_GREEN", "CANARY", "OTHER", "ROLLING", "SHADOW"}

// NormalizeDeploymentType maps user input such as "blue-green" to the
// NerdGraph enum spelling. Unknown values pass through upper-cased.
func NormalizeDeploymentType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.NewReplacer("-", "_", " ", "_").Replace(value)
	return cases.Upper(language.Und).String(value)
}

// ParseTimestamp converts epoch milliseconds or RFC 3339 text to epoch
// milliseconds. Blank input yields zero.
func ParseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		if ms <= 0 {
			return 0, services.Wrap(services.ErrValidation, "newrelic", "parse timestamp", "timestamp must be positive: "+value, nil)
		}
		return ms, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "newrelic", "parse timestamp", "timestamp is neither epoch milliseconds nor RFC 3339: "+value, err)
	}
	return parsed.UnixMilli(), nil
}
