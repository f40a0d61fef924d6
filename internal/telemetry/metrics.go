// Package telemetry records the metrics of a single runtime invocation. The
// process is short-lived, so instead of serving them the metrics are written
// once to a file in the Prometheus text format, for a node exporter textfile
// collector or a CI job to pick up.
package telemetry

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run summarises one phase run.
type Run struct {
	Phase     string
	ExitCode  int
	Duration  time.Duration
	Errors    int
	Warnings  int
	Resources int
	Functions int
}

// Metrics holds the collectors of one invocation in their own registry.
type Metrics struct {
	registry *prometheus.Registry

	phaseRuns     *prometheus.CounterVec
	phaseDuration *prometheus.HistogramVec
	diagnostics   *prometheus.CounterVec
	resources     *prometheus.GaugeVec
	functions     *prometheus.GaugeVec
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		phaseRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlefn_phase_runs_total",
				Help: "Total number of phase runs by phase and exit code",
			},
			[]string{"phase", "exit_code"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bundlefn_phase_duration_seconds",
				Help:    "Duration of phase runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bundlefn_diagnostics_total",
				Help: "Total number of diagnostics reported by phase and severity",
			},
			[]string{"phase", "severity"},
		),
		resources: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bundlefn_resources",
				Help: "Number of resources written back by the last run of a phase",
			},
			[]string{"phase"},
		),
		functions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bundlefn_functions",
				Help: "Number of loaders or mutators resolved by the last run of a phase",
			},
			[]string{"phase"},
		),
	}
	m.registry.MustRegister(m.phaseRuns, m.phaseDuration, m.diagnostics, m.resources, m.functions)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records a finished run.
func (m *Metrics) Observe(r Run) {
	m.phaseRuns.WithLabelValues(r.Phase, strconv.Itoa(r.ExitCode)).Inc()
	m.phaseDuration.WithLabelValues(r.Phase).Observe(r.Duration.Seconds())
	m.diagnostics.WithLabelValues(r.Phase, "error").Add(float64(r.Errors))
	m.diagnostics.WithLabelValues(r.Phase, "warning").Add(float64(r.Warnings))
	m.resources.WithLabelValues(r.Phase).Set(float64(r.Resources))
	m.functions.WithLabelValues(r.Phase).Set(float64(r.Functions))
}

// WriteTextfile writes every metric to path, replacing it atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to '%s': %w", path, err)
	}
	return nil
}
