package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/pricewatch/internal/lifecycle"
	"github.com/rickgao/pricewatch/internal/model"
)

const namespace = "pricewatch"

// Metrics holds the collectors for one lifecycle. It implements lifecycle.Observer.
type Metrics struct {
	registry *prometheus.Registry

	AttemptsIssued   *prometheus.CounterVec
	AttemptsResolved *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	Quotes           prometheus.Gauge
	Status           *prometheus.GaugeVec
	LastSuccess      prometheus.Gauge
}

var _ lifecycle.Observer = (*Metrics)(nil)

// New creates metrics on a private registry, including Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AttemptsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_attempts_total",
			Help:      "Poll attempts issued, by trigger",
		}, []string{"trigger"}),
		AttemptsResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_results_total",
			Help:      "Poll attempts resolved, by outcome and error kind",
		}, []string{"outcome", "kind"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time from issuing a fetch to its resolution",
			Buckets:   prometheus.DefBuckets,
		}),
		Quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_quotes",
			Help:      "Number of quotes in the last good snapshot",
		}),
		Status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "status",
			Help:      "Current lifecycle status (1 for the active status)",
		}, []string{"status"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful poll",
		}),
	}

	m.registry.MustRegister(
		m.AttemptsIssued,
		m.AttemptsResolved,
		m.FetchDuration,
		m.Quotes,
		m.Status,
		m.LastSuccess,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.setStatus(lifecycle.StatusIdle)
	return m
}

// WatchQueue exports the current event loop backlog.
func (m *Metrics) WatchQueue(pending func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "loop_pending_tasks",
		Help:      "Tasks waiting in the event loop mailbox",
	}, func() float64 { return float64(pending()) }))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) AttemptIssued(trigger string) {
	m.AttemptsIssued.WithLabelValues(trigger).Inc()
}

func (m *Metrics) AttemptResolved(result model.FetchResult, elapsed time.Duration) {
	m.FetchDuration.Observe(elapsed.Seconds())
	if result.OK() {
		m.AttemptsResolved.WithLabelValues("success", "").Inc()
		m.Quotes.Set(float64(len(result.Quotes)))
		m.LastSuccess.Set(float64(result.CompletedAt.Unix()))
		return
	}
	m.AttemptsResolved.WithLabelValues("failure", result.Failure.Kind.String()).Inc()
}

func (m *Metrics) StateChanged(s lifecycle.State) {
	m.setStatus(s.Status)
}

func (m *Metrics) setStatus(current lifecycle.Status) {
	for _, s := range []lifecycle.Status{
		lifecycle.StatusIdle,
		lifecycle.StatusLoading,
		lifecycle.StatusReady,
		lifecycle.StatusFailed,
	} {
		v := 0.0
		if s == current {
			v = 1
		}
		m.Status.WithLabelValues(s.String()).Set(v)
	}
}
