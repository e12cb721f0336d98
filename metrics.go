package hydro

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus collectors of one Client.
type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	queueDepth      *prometheus.GaugeVec
	patchesApplied  prometheus.Counter
	bindFlushes     prometheus.Counter
	bindFields      prometheus.Counter
	triggersTotal   *prometheus.CounterVec
	effectErrors    *prometheus.CounterVec
	navigations     *prometheus.CounterVec
}

func newMetrics(cfg MetricsConfig) *metrics {
	factory := promauto.With(cfg.Registry)

	return &metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of Hydro requests by type and outcome",
		}, []string{"type", "outcome"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "Hydro request duration in seconds, queue wait excluded",
			Buckets:   cfg.Buckets,
		}, []string{"type"}),

		queueDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "queue_depth",
			Help:      "Queued or running requests per serialization lane",
		}, []string{"lane"}),

		patchesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "patches_applied_total",
			Help:      "Total number of node patches applied while reconciling components",
		}),

		bindFlushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "bind_flushes_total",
			Help:      "Total number of debounced bind flushes",
		}),

		bindFields: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "bind_fields_total",
			Help:      "Total number of fields sent by bind flushes",
		}),

		triggersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "triggers_total",
			Help:      "Triggers by scope and whether they were delivered or dropped",
		}, []string{"scope", "result"}),

		effectErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "effect_errors_total",
			Help:      "Malformed effect headers by header name",
		}, []string{"header"}),

		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "navigations_total",
			Help:      "Page loads by kind: boosted, fallback, full",
		}, []string{"kind"}),
	}
}
