// Package metrics records invocation metrics with Prometheus.
//
// A Collector is an exec.Observer; hand it to exec.Options and it counts
// every invocation by command and outcome.
package metrics

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/simonhull/wren/exec"
)

// Outcome labels
const (
	OutcomeSuccess   = "success"
	OutcomeExitError = "exit_error" // ran and exited non-zero
	OutcomeAborted   = "aborted"    // never started, or killed by a signal
	OutcomeReadError = "read_error" // exited zero but output could not be decoded
)

// Collector holds the invocation metrics in its own registry
type Collector struct {
	registry *prometheus.Registry

	started  *prometheus.CounterVec
	finished *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

var _ exec.Observer = (*Collector)(nil)

// NewCollector creates a collector with a fresh registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		started: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wren_invocations_started_total",
				Help: "Total number of subprocess invocations started",
			},
			[]string{"command"},
		),
		finished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wren_invocations_finished_total",
				Help: "Total number of subprocess invocations finished, by outcome",
			},
			[]string{"command", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wren_invocation_duration_seconds",
				Help:    "Wall time of subprocess invocations in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"command"},
		),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "wren_invocations_in_flight",
			Help: "Number of subprocess invocations currently running",
		}),
	}
}

// Registry returns the registry the metrics live in
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Started implements exec.Observer
func (c *Collector) Started(_ string, spec exec.ProcessSpec) {
	c.started.WithLabelValues(commandLabel(spec)).Inc()
	c.inFlight.Inc()
}

// Finished implements exec.Observer
func (c *Collector) Finished(_ string, spec exec.ProcessSpec, _ int, elapsed time.Duration, err error) {
	command := commandLabel(spec)
	c.inFlight.Dec()
	c.finished.WithLabelValues(command, Outcome(err)).Inc()
	c.duration.WithLabelValues(command).Observe(elapsed.Seconds())
}

// WriteTextfile writes the current metrics in the node_exporter textfile
// format, replacing path atomically
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// Outcome classifies the error returned by Invoke
func Outcome(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var lpe *exec.LoadingPatternError
	if errors.As(err, &lpe) {
		if lpe.ExitCode > 0 {
			return OutcomeExitError
		}
		return OutcomeAborted
	}
	return OutcomeReadError
}

// commandLabel keeps label cardinality bounded to the executable name
func commandLabel(spec exec.ProcessSpec) string {
	if len(spec.Args) == 0 || spec.Args[0] == "" {
		return "unknown"
	}
	return filepath.Base(spec.Args[0])
}
