// Package metrics exposes Prometheus instruments for the OctoFit service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "octofit"

// Rebuild results
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var registry = prometheus.NewRegistry() //nolint:gochecknoglobals // process-wide metrics registry

var (
	rebuilds = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "leaderboard_rebuilds_total",
		Help:      "Leaderboard rebuilds by result.",
	}, []string{"result"})

	rebuildDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "leaderboard_rebuild_duration_seconds",
		Help:      "Time spent rebuilding the leaderboard.",
		Buckets:   prometheus.DefBuckets,
	})

	entries = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "leaderboard_entries",
		Help:      "Entries in the latest leaderboard snapshot.",
	})

	backpressure = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rebuild_queue_backpressure_total",
		Help:      "Rebuild requests rejected because the queue was full.",
	})

	activitiesLogged = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activities_logged_total",
		Help:      "Activities written through the API or the simulator.",
	})

	websocketClients = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Connected websocket clients.",
	})
)

func init() { //nolint:gochecknoinits // runtime collectors for the custom registry
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Registry returns the registry holding every OctoFit instrument
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ObserveRebuild records one rebuild outcome
func ObserveRebuild(took time.Duration, size int, err error) {
	if err != nil {
		rebuilds.WithLabelValues(ResultError).Inc()
		return
	}
	rebuilds.WithLabelValues(ResultSuccess).Inc()
	rebuildDuration.Observe(took.Seconds())
	entries.Set(float64(size))
}

// IncBackpressure counts a rejected rebuild request
func IncBackpressure() {
	backpressure.Inc()
}

// IncActivitiesLogged counts a stored activity
func IncActivitiesLogged() {
	activitiesLogged.Inc()
}

// SetWebsocketClients records the number of connected clients
func SetWebsocketClients(n int) {
	websocketClients.Set(float64(n))
}
