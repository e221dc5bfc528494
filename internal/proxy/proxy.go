// Package proxy forwards authenticated requests to upstream services and
// relays responses verbatim. There are no retries, no circuit breaking,
// and no caching: an upstream failure is a terminal 503 for that request.
package proxy

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/carebridge/hospital-gateway/internal/observability/metrics"
	"github.com/carebridge/hospital-gateway/internal/registry"
	"github.com/carebridge/hospital-gateway/pkg/logging"
)

var tracer = otel.Tracer("gateway.internal.proxy")

// Proxy is a reverse proxy bound to one upstream service.
type Proxy struct {
	service registry.Service
	rp      *httputil.ReverseProxy
	logger  *logging.Logger
	metrics *metrics.GatewayMetrics
}

// New creates a proxy for svc. The inbound path is forwarded as-is; the
// prefix maps to itself on the upstream.
func New(svc registry.Service, logger *logging.Logger, m *metrics.GatewayMetrics) (*Proxy, error) {
	target, err := url.Parse(svc.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("proxy: parse %s base URL: %w", svc.Name, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy: %s base URL %q lacks scheme or host", svc.Name, svc.BaseURL)
	}
	if logger == nil {
		logger = logging.Default()
	}

	p := &Proxy{service: svc, logger: logger, metrics: m}
	p.rp = &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
		},
		ErrorHandler: p.handleError,
	}
	return p, nil
}

// ServeHTTP forwards the request and records latency and outcome.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "proxy.forward",
		trace.WithAttributes(
			attribute.String("gateway.service", p.service.Name),
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
		),
	)
	defer span.End()

	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	p.rp.ServeHTTP(sw, r.WithContext(ctx))

	span.SetAttributes(attribute.Int("http.status_code", sw.status))
	p.metrics.ObserveUpstreamLatency(p.service.Name, time.Since(start).Seconds())
	p.metrics.ObserveRequest(p.service.Name, r.Method, strconv.Itoa(sw.status))
}

// handleError is the proxy error hook. The wire contract is a single
// generic 503 per service; the underlying error goes to the log so
// operators can tell DNS failures from refused connections.
func (p *Proxy) handleError(w http.ResponseWriter, r *http.Request, err error) {
	p.logger.Error("upstream unavailable",
		"service", p.service.Name,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	trace.SpanFromContext(r.Context()).RecordError(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	fmt.Fprintf(w, `{"error":%q}`, p.service.DisplayName+" service unavailable")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
