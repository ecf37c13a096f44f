package logging

import (
	"context"
	"log/slog"

	"relicnotify/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for dispatch run identifiers.
	FieldRunID = "run_id"
	// FieldJob is the standardized structured logging key for job names.
	FieldJob = "job"
	// FieldTargetIndex is the standardized structured logging key for the 1-based target position.
	FieldTargetIndex = "target_index"
	// FieldProtocol is the standardized structured logging key for the wire protocol version.
	FieldProtocol = "protocol"
	// FieldTarget is the standardized structured logging key for application IDs and entity GUIDs.
	FieldTarget = "target"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if rid, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, rid))
	}
	if job, ok := services.JobFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldJob, job))
	}
	if idx, ok := services.TargetIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldTargetIndex, idx))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
