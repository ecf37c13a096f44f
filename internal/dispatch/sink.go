package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"relicnotify/internal/logging"
)

// Level grades a diagnostic.
type Level int

const (
	LevelInfo Level = iota
	// LevelDetail carries supplementary text about the preceding send, such
	// as the message returned by NerdGraph.
	LevelDetail
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelDetail:
		return "detail"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Diagnostic is one human-readable message produced by a dispatch.
type Diagnostic struct {
	Level   Level
	Message string
	// Target is the label of the target the message concerns, if any.
	Target string
	Err    error
}

// Sink receives diagnostics. Implementations must tolerate concurrent use
// when an Engine serves concurrent dispatches.
type Sink interface {
	Emit(ctx context.Context, d Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, d Diagnostic)

func (f SinkFunc) Emit(ctx context.Context, d Diagnostic) { f(ctx, d) }

// LogSink writes diagnostics as console lines in the style of a build log
// and mirrors each one to a structured logger.
type LogSink struct {
	mu     sync.Mutex
	out    io.Writer
	logger *slog.Logger
}

// NewLogSink returns a sink writing to out. Either argument may be nil.
func NewLogSink(out io.Writer, logger *slog.Logger) *LogSink {
	if out == nil {
		out = io.Discard
	}
	return &LogSink{out: out, logger: logging.NewComponentLogger(logger, "notifier")}
}

func (s *LogSink) Emit(ctx context.Context, d Diagnostic) {
	s.mu.Lock()
	switch d.Level {
	case LevelError:
		fmt.Fprintf(s.out, "ERROR: %s\n", d.Message)
	case LevelFatal:
		fmt.Fprintf(s.out, "FATAL: %s\n", d.Message)
	default:
		fmt.Fprintln(s.out, d.Message)
	}
	s.mu.Unlock()

	logger := logging.WithContext(ctx, s.logger)
	attrs := make([]logging.Attr, 0, 3)
	if d.Target != "" {
		attrs = append(attrs, logging.String(logging.FieldTarget, d.Target))
	}
	if d.Err != nil {
		attrs = append(attrs, logging.Error(d.Err))
	}
	switch d.Level {
	case LevelError:
		hint := "check the api key and target identifier"
		if d.Target == "" {
			hint = "only successful or unstable builds are reported"
		}
		logging.ErrorWithContext(logger, d.Message, "notification_failed",
			append(attrs, logging.String(logging.FieldErrorHint, hint))...)
	case LevelFatal:
		logging.ErrorWithContext(logger, d.Message, "dispatch_aborted",
			append(attrs, logging.String(logging.FieldErrorHint, "add at least one [[deployment]] to the job file"))...)
	case LevelDetail:
		logger.Debug(d.Message, logging.Args(attrs...)...)
	default:
		logger.Info(d.Message, logging.Args(attrs...)...)
	}
}

// Recorder is a Sink that keeps every diagnostic in memory.
type Recorder struct {
	mu          sync.Mutex
	diagnostics []Diagnostic
}

func (r *Recorder) Emit(_ context.Context, d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns a copy of everything recorded so far.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.diagnostics...)
}

// Count returns how many diagnostics of level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diagnostics {
		if d.Level == level {
			n++
		}
	}
	return n
}

type detailSink struct {
	ctx   context.Context
	sink  Sink
	label string
}

func (d detailSink) Detail(msg string) {
	d.sink.Emit(d.ctx, Diagnostic{Level: LevelDetail, Message: msg, Target: d.label})
}
