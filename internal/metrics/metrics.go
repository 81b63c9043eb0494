// Package metrics records run counters in a private prometheus registry that
// can be exported in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/mj1618/visual-runner/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects per-run metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry
	steps    *prometheus.CounterVec
	scores   prometheus.Histogram
	launches *prometheus.CounterVec
	records  prometheus.Counter
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visual_runner",
			Name:      "steps_total",
			Help:      "Step attempts by action and outcome.",
		}, []string{"action", "outcome"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "visual_runner",
			Name:      "match_score",
			Help:      "Best normalized correlation score per locate.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.85, 0.9, 0.95, 0.99, 1},
		}),
		launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visual_runner",
			Name:      "launches_total",
			Help:      "Application launches by result.",
		}, []string{"result"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "visual_runner",
			Name:      "records_total",
			Help:      "Data records completed.",
		}),
	}
	r.registry.MustRegister(r.steps, r.scores, r.launches, r.records)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveStep counts a step result and, when a locate ran, its score.
func (r *Recorder) ObserveStep(res model.StepResult) {
	if r == nil {
		return
	}
	r.steps.WithLabelValues(res.Action.String(), res.Outcome.String()).Inc()
	if res.Outcome == model.OutcomePerformed || res.Outcome == model.OutcomeNotFound || res.Outcome == model.OutcomeLocated {
		r.scores.Observe(res.Score)
	}
}

// ObserveLaunch counts an application launch.
func (r *Recorder) ObserveLaunch(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.launches.WithLabelValues(result).Inc()
}

// RecordDone counts a completed data record.
func (r *Recorder) RecordDone() {
	if r == nil {
		return
	}
	r.records.Inc()
}

// WriteTextfile writes the current metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
