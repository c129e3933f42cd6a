package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "results_ingest"

// Outcome labels.
const (
	OutcomeCreated   = "created"
	OutcomeUpdated   = "updated"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
)

// Metrics holds the ingestion collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	recordsProcessed     *prometheus.CounterVec
	splitReconciliations *prometheus.CounterVec
	writeConflicts       prometheus.Counter
	retries              prometheus.Counter
	auditEntries         *prometheus.CounterVec
	auditFailures        prometheus.Counter
	ingestDuration       *prometheus.HistogramVec
}

// New registers the ingestion collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recordsProcessed: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_processed_total",
			Help:      "Feed records processed by section and outcome",
		}, []string{"section", "outcome"}),
		splitReconciliations: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_reconciliations_total",
			Help:      "Split ledger reconciliations by outcome",
		}, []string{"outcome"}),
		writeConflicts: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_conflicts_total",
			Help:      "Store write conflicts seen by the split ledger",
		}),
		retries: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_retries_total",
			Help:      "Split reconciliation retries after a write conflict",
		}),
		auditEntries: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "Audit entries written by change type",
		}, []string{"type"}),
		auditFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_failures_total",
			Help:      "Audit entries that could not be written",
		}),
		ingestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of a whole feed ingestion",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"kind"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the collected metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordProcessed(section, outcome string) {
	if m == nil {
		return
	}
	m.recordsProcessed.WithLabelValues(section, outcome).Inc()
}

func (m *Metrics) SplitReconciled(outcome string) {
	if m == nil {
		return
	}
	m.splitReconciliations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WriteConflict() {
	if m == nil {
		return
	}
	m.writeConflicts.Inc()
}

func (m *Metrics) Retry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}

func (m *Metrics) AuditWritten(changeType string) {
	if m == nil {
		return
	}
	m.auditEntries.WithLabelValues(changeType).Inc()
}

func (m *Metrics) AuditFailed() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// ObserveIngest records how long one feed took.
func (m *Metrics) ObserveIngest(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.ingestDuration.WithLabelValues(kind).Observe(d.Seconds())
}
