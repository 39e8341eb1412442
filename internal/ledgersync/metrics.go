package ledgersync

// Metrics follows core/system_health_logging.go's prometheus.Registry
// pattern: one registry owned by the subsystem, gauges/counters created and
// registered together, a Handler for cmd/server's /metrics route.

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry          *prometheus.Registry
	blocksApplied     prometheus.Counter
	deltaDecodeErrors prometheus.Counter
	queueDepth        prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		blocksApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledgersync_blocks_applied_total",
			Help: "Number of block-jobs fully applied to the read store.",
		}),
		deltaDecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledgersync_delta_decode_errors_total",
			Help: "Number of state-delta entries skipped because their container bytes failed to decode.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledgersync_queue_depth",
			Help: "Number of block-jobs currently buffered in the single-writer queue.",
		}),
	}
	reg.MustRegister(m.blocksApplied, m.deltaDecodeErrors, m.queueDepth)
	return m
}

// Handler exposes the registry in the standard Prometheus exposition
// format for mounting under /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
