// Package metrics exposes Prometheus metrics for probes, reconciles and cycles.
//
// Naming follows Prometheus conventions: sitewatch_ prefix, _total for
// counters and _seconds for durations. A nil *Recorder records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/aleister1102/sitewatch/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so tests and multiple instances never collide.
type Recorder struct {
	registry       *prometheus.Registry
	probes         *prometheus.CounterVec
	probeDuration  prometheus.Histogram
	outcomes       *prometheus.CounterVec
	cycles         prometheus.Counter
	cycleDuration  prometheus.Histogram
	monitoredSites prometheus.Gauge
}

// NewRecorder registers every metric plus the Go and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitewatch_probes_total",
				Help: "Total number of website probes by classified status.",
			},
			[]string{"status"},
		),
		probeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sitewatch_probe_duration_seconds",
				Help:    "Duration of website probes in seconds.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitewatch_reconcile_outcomes_total",
				Help: "Total number of status message reconciles by outcome.",
			},
			[]string{"outcome"},
		),
		cycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "sitewatch_cycles_total",
				Help: "Total number of completed monitoring cycles.",
			},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sitewatch_cycle_duration_seconds",
				Help:    "Duration of monitoring cycles in seconds.",
				Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
			},
		),
		monitoredSites: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "sitewatch_monitored_sites",
				Help: "Number of sites in the current configuration.",
			},
		),
	}

	r.registry.MustRegister(
		r.probes,
		r.probeDuration,
		r.outcomes,
		r.cycles,
		r.cycleDuration,
		r.monitoredSites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Pre-create label sets so dashboards see zeros instead of gaps.
	for _, status := range models.AllStatuses {
		r.probes.WithLabelValues(string(status))
	}
	for _, outcome := range []models.ReconcileOutcome{
		models.OutcomeCreated, models.OutcomeUpdated, models.OutcomeUnchanged,
		models.OutcomeRepaired, models.OutcomeFailed, models.OutcomeSkipped,
	} {
		r.outcomes.WithLabelValues(string(outcome))
	}

	return r
}

// ObserveProbe records one classified probe.
func (r *Recorder) ObserveProbe(status models.Status, duration time.Duration) {
	if r == nil {
		return
	}
	r.probes.WithLabelValues(string(status)).Inc()
	r.probeDuration.Observe(duration.Seconds())
}

// ObserveOutcome records one reconcile result.
func (r *Recorder) ObserveOutcome(outcome models.ReconcileOutcome) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(string(outcome)).Inc()
}

// ObserveCycle records a finished cycle.
func (r *Recorder) ObserveCycle(duration time.Duration) {
	if r == nil {
		return
	}
	r.cycles.Inc()
	r.cycleDuration.Observe(duration.Seconds())
}

// SetMonitoredSites updates the site gauge.
func (r *Recorder) SetMonitoredSites(n int) {
	if r == nil {
		return
	}
	r.monitoredSites.Set(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
