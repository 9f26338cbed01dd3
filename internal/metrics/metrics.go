// Package metrics exports pipeline outcomes as Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ericfisherdev/reviewgate/internal/domain/model"
	"github.com/ericfisherdev/reviewgate/internal/domain/port/driven"
)

// Compile-time interface check.
var _ driven.MetricsRecorder = (*Recorder)(nil)

// Recorder implements driven.MetricsRecorder with Prometheus collectors.
type Recorder struct {
	decisions  *prometheus.CounterVec
	wait       prometheus.Histogram
	reviewerB  *prometheus.CounterVec
	items      *prometheus.CounterVec
	autopilots prometheus.Counter
}

// NewRecorder registers the reviewgate collectors with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics handler.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		decisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewgate_decisions_total",
				Help: "Total number of merge decisions by readiness",
			},
			[]string{"readiness"},
		),
		wait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reviewgate_review_wait_seconds",
				Help:    "Time spent waiting for automated reviewers",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900, 1800},
			},
		),
		reviewerB: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewgate_reviewer_b_outcomes_total",
				Help: "Terminal state of reviewer B at the end of each wait",
			},
			[]string{"outcome"},
		),
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewgate_review_items_total",
				Help: "Total number of classified review items by priority",
			},
			[]string{"priority"},
		),
		autopilots: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "reviewgate_autopilot_recommendations_total",
				Help: "Total number of decisions that recommended autopilot merge",
			},
		),
	}
}

// ObserveWait records the wait duration and reviewer B's outcome.
func (r *Recorder) ObserveWait(status model.ReviewStatus, elapsed time.Duration) {
	r.wait.Observe(elapsed.Seconds())
	r.reviewerB.WithLabelValues(status.ReviewerBOutcome()).Inc()
}

// ObserveItems counts classified items per priority.
func (r *Recorder) ObserveItems(items []model.ReviewItem) {
	for _, item := range items {
		r.items.WithLabelValues(string(item.Priority)).Inc()
	}
}

// ObserveDecision counts the decision under its readiness label.
func (r *Recorder) ObserveDecision(decision model.MergeDecision) {
	r.decisions.WithLabelValues(string(decision.Readiness)).Inc()
	if decision.AutopilotRecommended {
		r.autopilots.Inc()
	}
}
