package socket

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles optional Prometheus instrumentation for a Server. A nil
// *Metrics (the ServerParams default) means no metrics are recorded;
// passing one built by NewMetrics wires every collector in.
type Metrics struct {
	AcceptsTotal      prometheus.Counter
	ActiveConnections prometheus.Gauge
	DispatchSeconds   prometheus.Histogram
	CompressionRatio  prometheus.Histogram
}

// NewMetrics constructs a Metrics with namespace-prefixed collector names,
// ready to be registered against a prometheus.Registerer by the caller.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		AcceptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "socket_accepts_total",
			Help:      "Total number of accepted connections.",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "socket_active_connections",
			Help:      "Number of connections currently being served.",
		}),
		DispatchSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "socket_dispatch_seconds",
			Help:      "Time spent in a single request handler invocation.",
			Buckets:   prometheus.DefBuckets,
		}),
		CompressionRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "socket_compression_ratio",
			Help:      "Uncompressed-to-compressed body size ratio for compressed replies.",
			Buckets:   []float64{1, 1.5, 2, 3, 5, 8, 13},
		}),
	}
}

// Collectors returns every non-nil collector, for a single
// registry.MustRegister(m.Collectors()...) call.
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.AcceptsTotal,
		m.ActiveConnections,
		m.DispatchSeconds,
		m.CompressionRatio,
	}
}
