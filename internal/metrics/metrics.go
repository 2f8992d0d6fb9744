package metrics

import (
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all client metrics
type Metrics struct {
	// Channel counters
	Connects       atomic.Uint64
	Reconnects     atomic.Uint64
	KeepalivesSent atomic.Uint64

	// Frame counters
	FramesReceived atomic.Uint64
	ParseErrors    atomic.Uint64
	StatsApplied   atomic.Uint64

	// Event buffer counters
	EventsAdmitted       atomic.Uint64
	DuplicatesSuppressed atomic.Uint64

	// Backfill counters
	BackfillEvents   atomic.Uint64
	BackfillFailures atomic.Uint64

	// Prometheus collectors
	registry *prometheus.Registry
}

// New creates a new Metrics instance with Prometheus collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.registerPrometheusMetrics()

	return m
}

// registerPrometheusMetrics registers all metrics with Prometheus
func (m *Metrics) registerPrometheusMetrics() {
	// Channel metrics
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_connects_total",
			Help: "Total successful channel opens",
		},
		func() float64 { return float64(m.Connects.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_reconnects_total",
			Help: "Total reconnect attempts scheduled",
		},
		func() float64 { return float64(m.Reconnects.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_keepalives_sent_total",
			Help: "Total keepalive frames sent",
		},
		func() float64 { return float64(m.KeepalivesSent.Load()) },
	))

	// Frame metrics
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_frames_received_total",
			Help: "Total inbound frames received on the channel",
		},
		func() float64 { return float64(m.FramesReceived.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_parse_errors_total",
			Help: "Total inbound frames discarded as unparseable",
		},
		func() float64 { return float64(m.ParseErrors.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_stats_applied_total",
			Help: "Total stats snapshots projected",
		},
		func() float64 { return float64(m.StatsApplied.Load()) },
	))

	// Event buffer metrics
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_events_admitted_total",
			Help: "Total events accepted into the history buffer",
		},
		func() float64 { return float64(m.EventsAdmitted.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_duplicates_suppressed_total",
			Help: "Total events rejected as duplicates",
		},
		func() float64 { return float64(m.DuplicatesSuppressed.Load()) },
	))

	// Backfill metrics
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_backfill_events_total",
			Help: "Total historical events seeded at startup",
		},
		func() float64 { return float64(m.BackfillEvents.Load()) },
	))

	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "liveview_backfill_failures_total",
			Help: "Total failed backfill fetches",
		},
		func() float64 { return float64(m.BackfillFailures.Load()) },
	))
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// StartServer starts the metrics HTTP server
func (m *Metrics) StartServer(addr string) error {
	http.Handle("/metrics", m.Handler())
	return http.ListenAndServe(addr, nil)
}
