package history

import (
	"context"
	"log/slog"

	"relicnotify/internal/dispatch"
	"relicnotify/internal/logging"
	"relicnotify/internal/services"
)

// Recorder writes dispatch outcomes to a Store. Storage failures are logged
// and never affect the dispatch.
type Recorder struct {
	store  *Store
	logger *slog.Logger
}

// NewRecorder returns an observer backed by store.
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, logger: logging.NewComponentLogger(logger, "history")}
}

func (r *Recorder) TargetFinished(ctx context.Context, outcome dispatch.Outcome) {
	if r == nil || r.store == nil {
		return
	}
	attempt := Attempt{
		RunID:      outcome.RunID,
		Job:        outcome.Job,
		Index:      outcome.Index,
		Protocol:   string(outcome.Protocol),
		Identifier: outcome.Identifier,
		European:   outcome.European,
		Status:     StatusSuccess,
		StartedAt:  outcome.Started,
		Duration:   outcome.Duration,
	}
	if outcome.Err != nil {
		attempt.Status = StatusFailed
		attempt.ErrorKind = services.Kind(outcome.Err)
		attempt.ErrorMessage = outcome.Err.Error()
	}
	if _, err := r.store.RecordAttempt(context.WithoutCancel(ctx), attempt); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history attempt not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.String(logging.FieldImpact, "attempt missing from history"),
		)
	}
}

func (r *Recorder) RunFinished(ctx context.Context, summary dispatch.Summary) {
	if r == nil || r.store == nil {
		return
	}
	run := Run{
		RunID:     summary.RunID,
		Job:       summary.Job,
		Mode:      string(summary.Mode),
		StartedAt: summary.Started,
		Duration:  summary.Duration,
		Targets:   summary.Targets,
		Failed:    summary.Failed,
		Skipped:   summary.Skipped,
	}
	if err := r.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history run not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.String(logging.FieldImpact, "run missing from history"),
		)
	}
}
