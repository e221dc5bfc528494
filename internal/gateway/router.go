// Package gateway is the composition root: it wires the global middleware
// chain in its fixed order and mounts authentication plus reverse proxying
// per path prefix. The order is a hard invariant — recovery wraps
// everything, authentication always precedes proxying on protected
// prefixes, and the catch-all 404 registers last.
package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/carebridge/hospital-gateway/internal/http/middleware"
	"github.com/carebridge/hospital-gateway/internal/identity"
	"github.com/carebridge/hospital-gateway/internal/observability/metrics"
	"github.com/carebridge/hospital-gateway/internal/proxy"
	"github.com/carebridge/hospital-gateway/internal/registry"
	"github.com/carebridge/hospital-gateway/pkg/logging"
)

// Config holds everything the router needs. Optional fields (metrics,
// rate limiter, CORS origins) disable their feature when zero.
type Config struct {
	Logger   *logging.Logger
	Registry *registry.Registry
	Verifier identity.Verifier
	Profiles identity.ProfileStore

	Metrics        *metrics.GatewayMetrics
	MetricsHandler http.Handler
	RateLimiter    *middleware.RateLimiter

	AllowedOrigins []string
	MaxBodyBytes   int64
	Version        string
	Mode           string

	// RequiredRoles optionally gates a proxied service on an exact role,
	// keyed by service name. Authentication alone applies when unset.
	RequiredRoles map[string]string
}

// stubbedService is a route that is registered but never proxied. The six
// entries below are stubbed in every mode; disabled registry services join
// them in doctor-only mode.
type stubbedService struct {
	name        string
	displayName string
	prefix      string
}

var stubbedServices = []stubbedService{
	{"medical-records", "Medical Records", "/api/medical-records"},
	{"prescriptions", "Prescription", "/api/prescriptions"},
	{"billing", "Billing", "/api/billing"},
	{"rooms", "Room", "/api/rooms"},
	{"departments", "Department", "/api/departments"},
	{"notifications", "Notification", "/api/notifications"},
}

type gateway struct {
	cfg     *Config
	started time.Time
}

// New builds the gateway handler. It fails only on malformed upstream
// URLs, which is a configuration error worth refusing to start over.
func New(cfg *Config) (http.Handler, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = "development"
		if cfg.Registry.DoctorOnly() {
			cfg.Mode = "doctor-only-development"
		}
	}
	g := &gateway{cfg: cfg, started: time.Now()}

	r := chi.NewRouter()

	// Fixed middleware order: recovery first so it wraps every later
	// stage, then headers, CORS, rate limiting, body cap, access log.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders())
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(cfg.AllowedOrigins))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, cfg.Metrics))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBody(cfg.MaxBodyBytes))
	}
	r.Use(middleware.RequestLogger(cfg.Logger))

	r.Get("/health", g.handleHealth)
	r.Get("/docs", g.handleDocs)
	r.Get("/", g.handleRoot)
	r.Get("/services", g.handleServices)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	authenticate := middleware.Authenticate(cfg.Verifier, cfg.Profiles, cfg.Logger, cfg.Metrics)

	for _, svc := range cfg.Registry.Services() {
		if !svc.Enabled {
			stub := g.stubHandler(svc.DisplayName)
			r.Handle(svc.Prefix, stub)
			r.Handle(svc.Prefix+"/*", stub)
			continue
		}

		p, err := proxy.New(svc, cfg.Logger, cfg.Metrics)
		if err != nil {
			return nil, err
		}
		requiredRole := cfg.RequiredRoles[svc.Name]
		r.Route(svc.Prefix, func(sr chi.Router) {
			sr.Use(authenticate)
			if requiredRole != "" {
				sr.Use(middleware.RequireRole(requiredRole))
			}
			sr.Handle("/", p)
			sr.Handle("/*", p)
		})
	}

	for _, stub := range stubbedServices {
		h := g.stubHandler(stub.displayName)
		r.Handle(stub.prefix, h)
		r.Handle(stub.prefix+"/*", h)
	}

	r.NotFound(g.handleNotFound)

	return r, nil
}
