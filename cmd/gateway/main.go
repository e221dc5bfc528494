package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/carebridge/hospital-gateway/internal/config"
	"github.com/carebridge/hospital-gateway/internal/gateway"
	"github.com/carebridge/hospital-gateway/internal/http/middleware"
	"github.com/carebridge/hospital-gateway/internal/identity"
	"github.com/carebridge/hospital-gateway/internal/observability/metrics"
	"github.com/carebridge/hospital-gateway/internal/registry"
	"github.com/carebridge/hospital-gateway/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital API gateway",
		"env", cfg.Env,
		"port", cfg.Port,
		"mode", cfg.Mode(),
	)

	ctx := context.Background()

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool == nil {
		logger.Error("DATABASE_URL is required for profile lookups")
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := buildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Info("redis unavailable, rate limiting falls back to in-process windows")
	}

	metricsHandler, gatewayMetrics := setupGatewayMetrics()

	handler, err := gateway.New(&gateway.Config{
		Logger:         logger,
		Registry:       registry.New(cfg),
		Verifier:       buildVerifier(cfg),
		Profiles:       identity.NewPgxProfileStore(pool),
		Metrics:        gatewayMetrics,
		MetricsHandler: metricsHandler,
		RateLimiter:    middleware.NewRateLimiter(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow, logger),
		AllowedOrigins: cfg.AllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		Version:        cfg.Version,
		Mode:           cfg.Mode(),
	})
	if err != nil {
		logger.Error("failed to build gateway", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gateway...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("gateway stopped")
}

// buildVerifier selects local HS256 validation when the signing secret is
// configured, otherwise every token round-trips to the identity provider.
func buildVerifier(cfg *appconfig.Config) identity.Verifier {
	if strings.TrimSpace(cfg.AuthJWTSecret) != "" {
		return identity.NewTokenVerifier(cfg.AuthJWTSecret)
	}
	return identity.NewRemoteVerifier(cfg.AuthServiceURL, cfg.AuthServiceKey)
}

func setupGatewayMetrics() (http.Handler, *metrics.GatewayMetrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewGatewayMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres not reachable", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// buildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func buildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	options := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(options)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}
