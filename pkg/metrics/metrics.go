// Package metrics exposes the Host Controller's Prometheus instrumentation,
// following the counter/histogram registration style of
// examples/structured-logging in the teacher repo.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the counters and histograms the Host Controller
// records against. Construct with New and register on whatever registry
// the caller wants (the debug HTTP server mounts /metrics against it).
type Metrics struct {
	TransactionsActive prometheus.Gauge
	RenderDuration     prometheus.Histogram
	RPCErrors          *prometheus.CounterVec
	Reconnects         prometheus.Counter
}

// New constructs a Metrics bundle and registers it on reg. Passing nil
// uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		TransactionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "actionhost_transactions_active",
			Help: "Number of transactions currently being driven by this host process.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "actionhost_render_duration_seconds",
			Help:    "Time spent in one renderComponents call, from render to resolved batch.",
			Buckets: prometheus.DefBuckets,
		}),
		RPCErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "actionhost_rpc_errors_total",
			Help: "Count of RPC errors by method.",
		}, []string{"method"}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "actionhost_reconnects_total",
			Help: "Count of Socket reconnect attempts made by the backoff loop.",
		}),
	}

	reg.MustRegister(m.TransactionsActive, m.RenderDuration, m.RPCErrors, m.Reconnects)
	return m
}
