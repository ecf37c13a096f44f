package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"relicnotify/internal/credentials"
	"relicnotify/internal/logging"
	"relicnotify/internal/newrelic"
	"relicnotify/internal/services"
	"relicnotify/internal/target"
)

const (
	msgBuildUnsuccessful = "Build unsuccessful. Skipping New Relic deployment notification."
	msgMissingTargets    = "Missing notifications!"
)

// DeploymentClient sends notifications through either New Relic protocol.
type DeploymentClient interface {
	EndpointFor(european bool) string
	SendLegacy(ctx context.Context, secret credentials.Secret, applicationID, description, revision, changelog, user string, european bool) error
	SendEntity(ctx context.Context, secret credentials.Secret, d newrelic.EntityDeployment, european bool, detail newrelic.DetailWriter) error
}

// Engine dispatches deployment notifications. It keeps no per-dispatch state
// and may serve concurrent dispatches.
type Engine struct {
	client    DeploymentClient
	resolver  credentials.Resolver
	logger    *slog.Logger
	observers []Observer
	now       func() time.Time
	newRunID  func() string
}

// Option customizes the engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logging.NewComponentLogger(logger, "dispatch")
	}
}

// WithObservers registers observers notified after every target and run.
func WithObservers(observers ...Observer) Option {
	return func(e *Engine) {
		for _, o := range observers {
			if o != nil {
				e.observers = append(e.observers, o)
			}
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunIDGenerator overrides how run identifiers are produced.
func WithRunIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newRunID = gen
		}
	}
}

// NewEngine builds an engine. A nil client talks to the public New Relic
// hosts; a nil resolver finds no credentials.
func NewEngine(client DeploymentClient, resolver credentials.Resolver, opts ...Option) *Engine {
	if client == nil {
		client = newrelic.NewClient()
	}
	if resolver == nil {
		resolver = credentials.Chain{}
	}
	e := &Engine{
		client:   client,
		resolver: resolver,
		logger:   logging.NewComponentLogger(nil, "dispatch"),
		now:      time.Now,
		newRunID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Perform is the legacy entry point. It skips failed or aborted builds,
// resolves templates against the environment overlaid with build variables,
// and returns true only if every target was notified.
func (e *Engine) Perform(ctx context.Context, build Build, targets []target.NotificationTarget, sink Sink) bool {
	rep := &aggregate{ok: true}
	e.dispatch(ctx, ModePerform, build, targets, sink, rep)
	return rep.result()
}

// Run is the pipeline entry point. It attempts every target regardless of
// the build result and reports failures only through sink.
func (e *Engine) Run(ctx context.Context, build Build, targets []target.NotificationTarget, sink Sink) {
	e.dispatch(ctx, ModeRun, build, targets, sink, fireAndForget{})
}

// reporter folds per-target outcomes into what an entry point returns.
type reporter interface {
	abort()
	record(err error)
}

type aggregate struct {
	ok bool
}

func (a *aggregate) abort()           { a.ok = false }
func (a *aggregate) record(err error) { a.ok = a.ok && err == nil }
func (a *aggregate) result() bool     { return a.ok }

type fireAndForget struct{}

func (fireAndForget) abort()       {}
func (fireAndForget) record(error) {}

func (e *Engine) dispatch(ctx context.Context, mode Mode, build Build, targets []target.NotificationTarget, sink Sink, rep reporter) {
	if sink == nil {
		sink = SinkFunc(func(context.Context, Diagnostic) {})
	}
	runID := e.newRunID()
	ctx = services.WithRunID(ctx, runID)
	if job := strings.TrimSpace(build.Job); job != "" {
		ctx = services.WithJob(ctx, job)
	}
	logger := logging.WithContext(ctx, e.logger)

	summary := Summary{
		RunID:   runID,
		Job:     strings.TrimSpace(build.Job),
		Mode:    mode,
		Started: e.now(),
		Targets: len(targets),
	}
	defer func() {
		summary.Duration = e.now().Sub(summary.Started)
		for _, o := range e.observers {
			o.RunFinished(ctx, summary)
		}
		logger.Info("dispatch finished",
			logging.String("mode", string(mode)),
			logging.Int("targets", summary.Targets),
			logging.Int("failed", summary.Failed),
			logging.String("skipped", summary.Skipped),
			logging.Duration("duration", summary.Duration),
		)
	}()

	if mode == ModePerform && build.Result.Unsuccessful() {
		sink.Emit(ctx, Diagnostic{
			Level:   LevelError,
			Message: msgBuildUnsuccessful,
			Err:     services.Wrap(services.ErrBuildState, "dispatch", "perform", "build result "+string(build.Result), nil),
		})
		summary.Skipped = "build " + strings.ToLower(string(build.Result))
		rep.abort()
		return
	}
	if len(targets) == 0 {
		sink.Emit(ctx, Diagnostic{
			Level:   LevelFatal,
			Message: msgMissingTargets,
			Err:     services.Wrap(services.ErrConfiguration, "dispatch", string(mode), "no deployment targets configured", nil),
		})
		summary.Skipped = "no targets"
		rep.abort()
		return
	}

	env := build.environment(mode == ModePerform)
	for i, t := range targets {
		outcome := e.notify(services.WithTargetIndex(ctx, i+1), build, i+1, t, env, sink)
		outcome.RunID = runID
		outcome.Job = summary.Job
		if outcome.Err != nil {
			summary.Failed++
		}
		rep.record(outcome.Err)
		for _, o := range e.observers {
			o.TargetFinished(ctx, outcome)
		}
	}
}

func (e *Engine) notify(ctx context.Context, build Build, index int, t target.NotificationTarget, env map[string]string, sink Sink) Outcome {
	resolved := t.Resolve(env)
	label := resolved.Label()
	outcome := Outcome{
		Index:      index,
		Protocol:   resolved.Protocol(),
		Identifier: resolved.Identifier(),
		European:   resolved.European,
		Started:    e.now(),
	}
	logger := logging.WithContext(ctx, e.logger).With(
		logging.String(logging.FieldProtocol, string(outcome.Protocol)),
		logging.String(logging.FieldTarget, outcome.Identifier),
	)

	endpoint := e.client.EndpointFor(resolved.European)
	secret, found, err := e.resolver.Resolve(ctx, build.Scope(), resolved.APIKeyID, endpoint)
	if err != nil || !found || secret.IsZero() {
		outcome.Err = services.Wrap(services.ErrCredential, "dispatch", "resolve credentials",
			fmt.Sprintf("no api key %q for %s", resolved.APIKeyID, endpoint), err)
		outcome.Duration = e.now().Sub(outcome.Started)
		sink.Emit(ctx, Diagnostic{
			Level:   LevelError,
			Message: "Invalid credentials for " + label,
			Target:  label,
			Err:     outcome.Err,
		})
		return outcome
	}

	logger.Debug("sending deployment notification", logging.String("endpoint", endpoint))
	sendCtx := context.WithoutCancel(ctx)
	switch outcome.Protocol {
	case target.ProtocolEntity:
		outcome.Err = e.client.SendEntity(sendCtx, secret, newrelic.EntityDeployment{
			EntityGUID:     resolved.EntityGUID,
			Version:        resolved.Version,
			Changelog:      resolved.Changelog,
			Commit:         resolved.Commit,
			DeepLink:       resolved.DeepLink,
			DeploymentType: resolved.DeploymentType,
			Description:    resolved.Description,
			GroupID:        resolved.GroupID,
			Timestamp:      resolved.Timestamp,
			User:           resolved.User,
		}, resolved.European, detailSink{ctx: ctx, sink: sink, label: label})
	default:
		outcome.Err = e.client.SendLegacy(sendCtx, secret, resolved.ApplicationID,
			resolved.Description, resolved.Revision, resolved.Changelog, resolved.User, resolved.European)
	}
	outcome.Duration = e.now().Sub(outcome.Started)

	if outcome.Err != nil {
		sink.Emit(ctx, Diagnostic{
			Level:   LevelError,
			Message: fmt.Sprintf("Failed to notify New Relic. %s: %v", label, outcome.Err),
			Target:  label,
			Err:     outcome.Err,
		})
		return outcome
	}
	sink.Emit(ctx, Diagnostic{Level: LevelInfo, Message: "Notified New Relic. " + label, Target: label})
	return outcome
}
