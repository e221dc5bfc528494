package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	appconfig "github.com/carebridge/hospital-gateway/internal/config"
	"github.com/carebridge/hospital-gateway/internal/identity"
	"github.com/carebridge/hospital-gateway/pkg/logging"
)

func TestSetupGatewayMetricsExposesMetrics(t *testing.T) {
	handler, m := setupGatewayMetrics()
	if handler == nil || m == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	m.ObserveAuthFailure("missing_token")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "gateway_auth_failures_total") {
		t.Fatalf("expected auth failure counter to be exported")
	}
}

func TestBuildVerifierSelection(t *testing.T) {
	cfg := &appconfig.Config{AuthJWTSecret: "secret", AuthServiceURL: "http://localhost:3001"}
	if _, ok := buildVerifier(cfg).(*identity.TokenVerifier); !ok {
		t.Fatalf("expected TokenVerifier when secret is set")
	}

	cfg.AuthJWTSecret = ""
	if _, ok := buildVerifier(cfg).(*identity.RemoteVerifier); !ok {
		t.Fatalf("expected RemoteVerifier when secret is empty")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildRedisClientEmptyAddrReturnsNil(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{RedisAddr: ""}
	if client := buildRedisClient(context.Background(), cfg, logger, false); client != nil {
		t.Fatalf("expected nil client when addr unset")
	}
}

func TestBuildRedisClientVerifiesPing(t *testing.T) {
	logger := logging.New("error")
	mr := miniredis.RunT(t)

	cfg := &appconfig.Config{RedisAddr: mr.Addr()}
	client := buildRedisClient(context.Background(), cfg, logger, true)
	if client == nil {
		t.Fatalf("expected client for reachable redis")
	}
	_ = client.Close()

	mr.Close()
	if client := buildRedisClient(context.Background(), cfg, logger, true); client != nil {
		t.Fatalf("expected nil client when ping fails")
	}
}
