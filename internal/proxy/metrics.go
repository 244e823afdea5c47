package proxy

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// forwarderMetrics contains Prometheus metrics for forwarding operations.
type forwarderMetrics struct {
	forwardsTotal    *prometheus.CounterVec
	errorsTotal      prometheus.Counter
	upstreamDuration prometheus.Histogram
}

var (
	forwarderMetricsInstance *forwarderMetrics
	forwarderMetricsOnce     sync.Once
)

// getForwarderMetrics returns the singleton forwarder metrics instance,
// registering with the default registerer on first use.
func getForwarderMetrics() *forwarderMetrics {
	forwarderMetricsOnce.Do(func() {
		factory := promauto.With(prometheus.DefaultRegisterer)
		forwarderMetricsInstance = &forwarderMetrics{
			forwardsTotal: factory.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "agentgw",
					Subsystem: "proxy",
					Name:      "forwards_total",
					Help:      "Total number of forwarded requests",
				},
				[]string{"method", "status"},
			),
			errorsTotal: factory.NewCounter(
				prometheus.CounterOpts{
					Namespace: "agentgw",
					Subsystem: "proxy",
					Name:      "errors_total",
					Help:      "Total number of upstream transport failures",
				},
			),
			upstreamDuration: factory.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "agentgw",
					Subsystem: "proxy",
					Name:      "upstream_duration_seconds",
					Help:      "Duration of upstream requests until response headers",
					Buckets: []float64{
						.001, .005, .01, .025,
						.05, .1, .25, .5,
						1, 2.5, 5, 10,
					},
				},
			),
		}
	})
	return forwarderMetricsInstance
}
