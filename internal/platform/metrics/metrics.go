package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the service.
type Metrics struct {
	JobsCreated     prometheus.Counter
	JobsFinished    *prometheus.CounterVec
	JobDuration     prometheus.Histogram
	RegistryLookups *prometheus.CounterVec
	DispatchErrors  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg registers
// on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		JobsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ownership_jobs_created_total",
			Help: "Ownership jobs accepted by the API.",
		}),
		JobsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ownership_jobs_finished_total",
			Help: "Ownership jobs that reached a terminal status.",
		}, []string{"status"}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ownership_job_duration_seconds",
			Help:    "Time spent processing one ownership job.",
			Buckets: prometheus.DefBuckets,
		}),
		RegistryLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ownership_registry_lookups_total",
			Help: "Company identity lookups by outcome.",
		}, []string{"outcome"}),
		DispatchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ownership_dispatch_errors_total",
			Help: "Jobs that could not be handed to a worker.",
		}, []string{"mode"}),
	}
	reg.MustRegister(m.JobsCreated, m.JobsFinished, m.JobDuration, m.RegistryLookups, m.DispatchErrors)
	return m
}

// NewNop returns collectors registered nowhere; handy in tests.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) IncJobsCreated() {
	if m == nil {
		return
	}
	m.JobsCreated.Inc()
}

func (m *Metrics) ObserveJob(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.JobsFinished.WithLabelValues(status).Inc()
	m.JobDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) IncRegistryLookup(outcome string) {
	if m == nil {
		return
	}
	m.RegistryLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDispatchError(mode string) {
	if m == nil {
		return
	}
	m.DispatchErrors.WithLabelValues(mode).Inc()
}
