package metrics

import "github.com/prometheus/client_golang/prometheus"

// GatewayMetrics exposes counters/histograms for the request pipeline.
// All methods are nil-safe so wiring metrics stays optional.
type GatewayMetrics struct {
	requestsTotal    *prometheus.CounterVec
	authFailures     *prometheus.CounterVec
	rateLimitedTotal prometheus.Counter
	upstreamLatency  *prometheus.HistogramVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Total requests forwarded per upstream service",
		}, []string{"service", "method", "status"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Total authentication rejections by reason",
		}, []string{"reason"}),
		rateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gateway",
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter",
		}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Subsystem: "proxy",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of proxied upstream calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.authFailures, m.rateLimitedTotal, m.upstreamLatency)
	return m
}

func (m *GatewayMetrics) ObserveRequest(service, method, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(service, method, status).Inc()
}

func (m *GatewayMetrics) ObserveAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}

func (m *GatewayMetrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedTotal.Inc()
}

func (m *GatewayMetrics) ObserveUpstreamLatency(service string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(service).Observe(seconds)
}
