package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"relicnotify/internal/dispatch"
	"relicnotify/internal/history"
	"relicnotify/internal/jobs"
	"relicnotify/internal/logging"
	"relicnotify/internal/metrics"
	"relicnotify/internal/newrelic"
)

var errNotificationsFailed = errors.New("one or more deployment notifications failed")

type dispatchOptions struct {
	jobPath   string
	envFiles  []string
	vars      []string
	result    string
	noInherit bool
}

func (o *dispatchOptions) bindCommon(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.jobPath, "job", "j", "", "Job file listing [[deployment]] targets")
	cmd.Flags().StringArrayVar(&o.envFiles, "env-file", nil, "Dotenv file with build environment variables (repeatable)")
	cmd.Flags().BoolVar(&o.noInherit, "no-inherit-env", false, "Do not seed the build environment from the process environment")
	_ = cmd.MarkFlagRequired("job")
}

func newPerformCommand(ctx *commandContext) *cobra.Command {
	opts := &dispatchOptions{}
	cmd := &cobra.Command{
		Use:   "perform",
		Short: "Notify New Relic after a build, failing when any notification fails",
		Long: "Notify every configured target in order. Failed or aborted builds are skipped.\n" +
			"Build variables given with --var override the environment. Exits non-zero\n" +
			"unless every target was notified.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := runDispatch(cmd, ctx, opts, dispatch.ModePerform)
			if err != nil {
				return err
			}
			if !ok {
				return errNotificationsFailed
			}
			return nil
		},
	}
	opts.bindCommon(cmd)
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "Build variable KEY=VALUE overriding the environment (repeatable)")
	cmd.Flags().StringVar(&opts.result, "result", "SUCCESS", "Build result: SUCCESS, UNSTABLE, FAILURE, ABORTED or NOT_BUILT")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := &dispatchOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Notify New Relic from a pipeline step, reporting failures without failing the step",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runDispatch(cmd, ctx, opts, dispatch.ModeRun)
			return err
		},
	}
	opts.bindCommon(cmd)
	return cmd
}

// runDispatch loads the job inputs and drives the engine. The boolean is the
// aggregate result for perform and always true for run.
func runDispatch(cmd *cobra.Command, ctx *commandContext, opts *dispatchOptions, mode dispatch.Mode) (bool, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return false, err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return false, err
	}
	logger = logging.NewComponentLogger(logger, "cli")

	job, err := jobs.Load(opts.jobPath)
	if err != nil {
		return false, err
	}
	env, err := jobs.LoadEnv(jobs.EnvOptions{Inherit: !opts.noInherit, Files: opts.envFiles})
	if err != nil {
		return false, err
	}
	build := dispatch.Build{Job: job.Name, Env: env, Result: dispatch.ResultSuccess}
	if scope := ctx.scope(); scope != "" {
		build.Job = scope
	}
	if mode == dispatch.ModePerform {
		if build.Variables, err = jobs.ParseVars(opts.vars); err != nil {
			return false, err
		}
		if build.Result, err = dispatch.ParseBuildResult(opts.result); err != nil {
			return false, err
		}
	}

	resolver, err := ctx.credentialResolver()
	if err != nil {
		return false, err
	}

	var observers []dispatch.Observer
	if cfg.History.Enabled {
		store, err := ctx.openHistory(cmd.Context(), logger)
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check paths.history_db or disable [history]"),
				logging.String(logging.FieldImpact, "this dispatch will not be recorded"),
			)
		} else {
			defer store.Close()
			observers = append(observers, history.NewRecorder(store, logger))
		}
	}
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New()
		observers = append(observers, collector)
	}

	engine := dispatch.NewEngine(
		newrelic.NewFromConfig(cfg),
		resolver,
		dispatch.WithLogger(logger),
		dispatch.WithObservers(observers...),
	)
	sink := dispatch.NewLogSink(cmd.OutOrStdout(), logger)

	logger.Debug("dispatch starting",
		logging.String(logging.FieldJob, build.Job),
		logging.String("job_file", job.Path),
		logging.String("mode", string(mode)),
		logging.Int("targets", len(job.Targets)),
	)

	ok := true
	switch mode {
	case dispatch.ModePerform:
		ok = engine.Perform(cmd.Context(), build, job.Targets, sink)
	default:
		engine.Run(cmd.Context(), build, job.Targets, sink)
	}

	if collector != nil {
		writeMetrics(logger, collector, metrics.TextfilePath(cfg.Paths.MetricsTextfile, build.Job))
	}
	return ok, nil
}

func writeMetrics(logger *slog.Logger, collector *metrics.Collector, path string) {
	if err := collector.WriteTextfile(path); err != nil {
		logging.WarnWithContext(logger, "metrics textfile not written", "metrics_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, fmt.Sprintf("check that %s is writable", strings.TrimSpace(path))),
			logging.String(logging.FieldImpact, "metrics for this dispatch are missing"),
		)
	}
}
