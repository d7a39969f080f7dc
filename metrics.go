package onionfetch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsMonitor is a Monitor exporting Prometheus metrics.
// It is safe for concurrent use.
type MetricsMonitor struct {
	interval time.Duration

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheSize   prometheus.Gauge

	transportCalls prometheus.Counter
	errorsTotal    *prometheus.CounterVec
}

// NewMetricsMonitor registers the client metrics on reg.
// interval controls how often the cache size gauge is refreshed.
func NewMetricsMonitor(reg prometheus.Registerer, interval time.Duration) *MetricsMonitor {
	f := promauto.With(reg)
	return &MetricsMonitor{
		interval: interval,
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "onionfetch_cache_hits_total",
			Help: "Total number of responses served from the cache",
		}),
		cacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "onionfetch_cache_misses_total",
			Help: "Total number of cacheable requests not found in the cache",
		}),
		cacheSize: f.NewGauge(prometheus.GaugeOpts{
			Name: "onionfetch_cache_size",
			Help: "Current number of entries in the cache",
		}),
		transportCalls: f.NewCounter(prometheus.CounterOpts{
			Name: "onionfetch_transport_calls_total",
			Help: "Total number of calls made to the transport",
		}),
		errorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "onionfetch_errors_total",
			Help: "Total number of failed requests by cause",
		}, []string{"type"}),
	}
}

func (m *MetricsMonitor) GetInterval() time.Duration {
	return m.interval
}

func (m *MetricsMonitor) Log(stats Stats) {
	m.cacheSize.Set(float64(stats.Size))
}

func (m *MetricsMonitor) Hit()     { m.cacheHits.Inc() }
func (m *MetricsMonitor) Miss()    { m.cacheMisses.Inc() }
func (m *MetricsMonitor) Backend() { m.transportCalls.Inc() }
func (m *MetricsMonitor) Error()   { m.errorsTotal.WithLabelValues("error").Inc() }
func (m *MetricsMonitor) Timeout() { m.errorsTotal.WithLabelValues("timeout").Inc() }
func (m *MetricsMonitor) Cancel()  { m.errorsTotal.WithLabelValues("cancel").Inc() }
