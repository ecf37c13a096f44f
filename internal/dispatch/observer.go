package dispatch

import (
	"context"
	"time"

	"relicnotify/internal/target"
)

// Mode names the entry point a dispatch was started through.
type Mode string

const (
	ModePerform Mode = "perform"
	ModeRun     Mode = "run"
)

// Outcome is the result of one target within a dispatch.
type Outcome struct {
	RunID      string
	Job        string
	Index      int
	Protocol   target.Protocol
	Identifier string
	European   bool
	Started    time.Time
	Duration   time.Duration
	// Err is nil on success.
	Err error
}

// Summary describes a finished dispatch.
type Summary struct {
	RunID    string
	Job      string
	Mode     Mode
	Started  time.Time
	Duration time.Duration
	Targets  int
	Failed   int
	// Skipped holds the reason a guard stopped the dispatch before any
	// target was attempted.
	Skipped string
}

// Succeeded reports whether the dispatch ran and every target succeeded.
func (s Summary) Succeeded() bool {
	return s.Skipped == "" && s.Failed == 0
}

// Observer is told about every target outcome and every finished dispatch.
// Observers run synchronously on the dispatch goroutine.
type Observer interface {
	TargetFinished(ctx context.Context, outcome Outcome)
	RunFinished(ctx context.Context, summary Summary)
}
