package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"relicnotify/internal/dispatch"
	"relicnotify/internal/services"
)

const namespace = "relicnotify"

// Collector records the outcome of one dispatch on its own registry. Every
// series is a gauge describing the most recent run of a job and carries a job
// label, so per-job textfiles can sit side by side in one collector directory.
// It implements dispatch.Observer and is safe for concurrent use.
type Collector struct {
	registry      *prometheus.Registry
	notifications *prometheus.GaugeVec
	sendSeconds   *prometheus.GaugeVec
	result        *prometheus.GaugeVec
	duration      *prometheus.GaugeVec
	lastRun       *prometheus.GaugeVec
}

// New creates a collector with a fresh registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		notifications: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_notifications",
			Help:      "Deployment notifications attempted in the last run of a job, by protocol, region and outcome",
		}, []string{"job", "protocol", "region", "outcome"}),
		sendSeconds: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_notification_seconds",
			Help:      "Time spent resolving credentials and sending notifications in the last run of a job, by protocol",
		}, []string{"job", "protocol"}),
		result: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_result",
			Help:      "Set to 1 for the entry point and result of the last run of a job",
		}, []string{"job", "mode", "result"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run of a job",
		}, []string{"job"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the most recent dispatch of a job finished",
		}, []string{"job"}),
	}
	c.registry.MustRegister(c.notifications, c.sendSeconds, c.result, c.duration, c.lastRun)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) TargetFinished(_ context.Context, outcome dispatch.Outcome) {
	region := "us"
	if outcome.European {
		region = "eu"
	}
	result := "success"
	if outcome.Err != nil {
		result = services.Kind(outcome.Err)
	}
	job := jobLabel(outcome.Job)
	protocol := string(outcome.Protocol)
	c.notifications.With(prometheus.Labels{"job": job, "protocol": protocol, "region": region, "outcome": result}).Inc()
	c.sendSeconds.With(prometheus.Labels{"job": job, "protocol": protocol}).Add(outcome.Duration.Seconds())
}

func (c *Collector) RunFinished(_ context.Context, summary dispatch.Summary) {
	result := "success"
	switch {
	case summary.Skipped != "":
		result = "skipped"
	case summary.Failed > 0:
		result = "partial_failure"
	}
	job := jobLabel(summary.Job)
	c.result.With(prometheus.Labels{"job": job, "mode": string(summary.Mode), "result": result}).Set(1)
	c.duration.With(prometheus.Labels{"job": job}).Set(summary.Duration.Seconds())

	finished := summary.Started.Add(summary.Duration)
	c.lastRun.With(prometheus.Labels{"job": job}).Set(float64(finished.UnixNano()) / 1e9)
}

// TextfilePath returns the per-job textfile next to base. A base of
// "/var/lib/node_exporter/relicnotify.prom" and job "checkout" gives
// "/var/lib/node_exporter/relicnotify_checkout.prom".
func TextfilePath(base, job string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return ""
	}
	stem := strings.TrimSuffix(filepath.Base(base), ".prom")
	return filepath.Join(filepath.Dir(base), stem+"_"+fileSafe(jobLabel(job))+".prom")
}

// WriteTextfile writes the registry in text exposition format to path,
// atomically replacing any previous file.
func (c *Collector) WriteTextfile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("metrics textfile path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func jobLabel(job string) string {
	if job = strings.TrimSpace(job); job == "" {
		return "unnamed"
	}
	return job
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}
