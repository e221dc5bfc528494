package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (g *gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"service":        "api-gateway",
		"version":        g.cfg.Version,
		"mode":           g.cfg.Mode,
		"uptime_seconds": int64(time.Since(g.started).Seconds()),
	})
}

func (g *gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":           "Hospital Management API Gateway",
		"version":           g.cfg.Version,
		"mode":              g.cfg.Mode,
		"availableServices": g.cfg.Registry.Enabled(),
		"disabledServices":  g.disabledNames(),
		"endpoints": map[string]string{
			"health":    "/health",
			"docs":      "/docs",
			"discovery": "/services",
		},
	})
}

// handleServices is the service-discovery document. Intentionally
// unauthenticated: it reports static registry state, nothing per-user.
func (g *gateway) handleServices(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any)
	for _, svc := range g.cfg.Registry.Services() {
		status := "active"
		if !svc.Enabled {
			status = "disabled"
		}
		out[svc.Name] = map[string]string{
			"url":    svc.BaseURL,
			"status": status,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (g *gateway) handleDocs(w http.ResponseWriter, r *http.Request) {
	type routeDoc struct {
		Prefix  string `json:"prefix"`
		Service string `json:"service"`
		Methods string `json:"methods"`
		Auth    string `json:"auth"`
	}
	var routes []routeDoc
	for _, svc := range g.cfg.Registry.Services() {
		if !svc.Enabled {
			continue
		}
		routes = append(routes, routeDoc{
			Prefix:  svc.Prefix,
			Service: svc.Name,
			Methods: "*",
			Auth:    "bearer",
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title":   "Hospital Management API Gateway",
		"version": g.cfg.Version,
		"mode":    g.cfg.Mode,
		"routes":  routes,
		"public":  []string{"/health", "/services", "/docs"},
	})
}

// stubHandler answers for services that are configured but never proxied:
// permanently unimplemented prefixes, and registry services switched off
// by doctor-only mode. Deterministic 503, not a runtime failure.
func (g *gateway) stubHandler(displayName string) http.HandlerFunc {
	message := displayName + " service is not implemented yet"
	if g.cfg.Registry.DoctorOnly() {
		message = displayName + " service is disabled in doctor-only mode"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":             "Service temporarily unavailable",
			"message":           message,
			"mode":              g.cfg.Mode,
			"availableServices": g.cfg.Registry.Enabled(),
		})
	}
}

func (g *gateway) handleNotFound(w http.ResponseWriter, r *http.Request) {
	available := []string{"/health", "/services", "/docs"}
	for _, svc := range g.cfg.Registry.Services() {
		if svc.Enabled {
			available = append(available, svc.Prefix)
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":           "Route not found",
		"path":            r.URL.Path,
		"method":          r.Method,
		"mode":            g.cfg.Mode,
		"availableRoutes": available,
	})
}

func (g *gateway) disabledNames() []string {
	var names []string
	for _, svc := range g.cfg.Registry.Services() {
		if !svc.Enabled {
			names = append(names, svc.Name)
		}
	}
	for _, stub := range stubbedServices {
		names = append(names, stub.name)
	}
	return names
}
