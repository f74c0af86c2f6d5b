// Package metrics counts generation activity with Prometheus collectors and
// writes them as a node-exporter textfile at the end of a run.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ShayCichocki/arbor/internal/orchestrator"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	Expansions     *prometheus.CounterVec
	FailedAttempts *prometheus.CounterVec
	NodesCreated   *prometheus.CounterVec
	NodesSkipped   *prometheus.CounterVec
	Regenerations  *prometheus.CounterVec
	Saves          prometheus.Counter

	Runs        *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	Tokens      *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Expansions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_expansions_total",
				Help: "Expansion calls started, by generated level",
			},
			[]string{"level"},
		),
		FailedAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_failed_attempts_total",
				Help: "Generation attempts that failed and were retried, by level",
			},
			[]string{"level"},
		),
		NodesCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_nodes_created_total",
				Help: "Nodes attached to the roadmap, by level",
			},
			[]string{"level"},
		),
		NodesSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_nodes_skipped_total",
				Help: "Complete subtrees skipped during resume, by level of the root node",
			},
			[]string{"level"},
		),
		Regenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_review_regenerations_total",
				Help: "Skeleton lists discarded by the reviewer, by level",
			},
			[]string{"level"},
		),
		Saves: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "arbor_roadmap_saves_total",
				Help: "Full roadmap writes",
			},
		),
		Runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_runs_total",
				Help: "Generate and resume runs, by command and outcome",
			},
			[]string{"command", "outcome"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_run_duration_seconds",
				Help:    "Wall time of generate and resume runs",
				Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
			},
			[]string{"command"},
		),
		Tokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_tokens_total",
				Help: "Model tokens consumed, by direction",
			},
			[]string{"token_type"},
		),
	}
}

// HandleEvent updates counters from an orchestrator event.
func (m *Metrics) HandleEvent(ev orchestrator.Event) {
	level := string(ev.Level)
	switch ev.Type {
	case orchestrator.EventExpansionStarted:
		m.Expansions.WithLabelValues(level).Inc()
	case orchestrator.EventAttemptFailed:
		m.FailedAttempts.WithLabelValues(level).Inc()
	case orchestrator.EventShellsSaved, orchestrator.EventTasksSaved:
		m.NodesCreated.WithLabelValues(level).Add(float64(ev.Count))
		m.Saves.Inc()
	case orchestrator.EventNodeSkipped:
		m.NodesSkipped.WithLabelValues(level).Inc()
	case orchestrator.EventReviewRegenerate:
		m.Regenerations.WithLabelValues(level).Inc()
	}
}

// ObserveRun records the outcome of one CLI run.
func (m *Metrics) ObserveRun(command string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.Runs.WithLabelValues(command, outcome).Inc()
	m.RunDuration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// AddTokens records token usage.
func (m *Metrics) AddTokens(input, output int64) {
	m.Tokens.WithLabelValues("input").Add(float64(input))
	m.Tokens.WithLabelValues("output").Add(float64(output))
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every collector in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
