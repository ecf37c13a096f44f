package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	jobKey       contextKey = "job"
	targetIdxKey contextKey = "target_index"
)

// WithRunID annotates context with the dispatch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the dispatch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithJob annotates context with the job name.
func WithJob(ctx context.Context, job string) context.Context {
	if job == "" {
		return ctx
	}
	return context.WithValue(ctx, jobKey, job)
}

// JobFromContext returns the job name if present.
func JobFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTargetIndex annotates context with the 1-based position of the target
// being dispatched.
func WithTargetIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, targetIdxKey, index)
}

// TargetIndexFromContext extracts the target position if present.
func TargetIndexFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(targetIdxKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}
