// Package metrics exposes Prometheus collectors for ingestion and validation
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the customsdoc collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	RuleDuration *prometheus.HistogramVec
	Issues       *prometheus.CounterVec
	RuleFailures *prometheus.CounterVec
	Ingest       *prometheus.CounterVec
	IngestBytes  prometheus.Histogram
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RuleDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "customsdoc_rule_duration_seconds",
			Help:    "Duration of a single validation rule evaluation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"rule"}),

		Issues: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "customsdoc_issues_total",
			Help: "Validation issues emitted by rule and severity",
		}, []string{"rule", "severity"}),

		RuleFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "customsdoc_rule_failures_total",
			Help: "Rule evaluations that returned an error or panicked",
		}, []string{"rule"}),

		Ingest: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "customsdoc_ingest_total",
			Help: "Documents ingested by source type and outcome",
		}, []string{"source", "outcome"}), // outcome: "ok", "error"

		IngestBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "customsdoc_ingest_bytes",
			Help:    "Size of ingested documents",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		}),
	}
}

// ObserveRule records one rule evaluation
func (m *Metrics) ObserveRule(rule string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	m.RuleDuration.WithLabelValues(rule).Observe(d.Seconds())
	if failed {
		m.RuleFailures.WithLabelValues(rule).Inc()
	}
}

// AddIssues counts issues emitted by rule at severity
func (m *Metrics) AddIssues(rule, severity string, n int) {
	if m != nil && n > 0 {
		m.Issues.WithLabelValues(rule, severity).Add(float64(n))
	}
}

// ObserveIngest records one ingestion attempt
func (m *Metrics) ObserveIngest(source string, size int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Ingest.WithLabelValues(source, outcome).Inc()
	m.IngestBytes.Observe(float64(size))
}
