package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds gateway configuration. It is loaded once at startup and
// never mutated afterwards; components receive it by reference from the
// composition root.
type Config struct {
	Port     string
	Env      string
	LogLevel string
	Version  string

	AllowedOrigins []string
	DoctorOnlyMode bool

	DoctorServiceURL      string
	PatientServiceURL     string
	AppointmentServiceURL string

	// Identity provider used to resolve bearer tokens. AuthJWTSecret, when
	// set, switches token verification to local HS256 validation instead.
	AuthServiceURL string
	AuthServiceKey string
	AuthJWTSecret  string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	RateLimitMax    int
	RateLimitWindow time.Duration
	MaxBodyBytes    int64
}

// Load reads configuration from environment variables. Each upstream has a
// hard-coded local fallback so a development gateway starts without any
// environment at all.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Version:  getEnv("GATEWAY_VERSION", "1.0.0"),

		AllowedOrigins: splitAndTrim(getEnv("ALLOWED_ORIGINS", "*")),
		DoctorOnlyMode: getEnvAsBool("DOCTOR_ONLY_MODE", false),

		DoctorServiceURL:      getEnv("DOCTOR_SERVICE_URL", "http://localhost:3002"),
		PatientServiceURL:     getEnv("PATIENT_SERVICE_URL", "http://localhost:3003"),
		AppointmentServiceURL: getEnv("APPOINTMENT_SERVICE_URL", "http://localhost:3004"),

		AuthServiceURL: getEnv("AUTH_SERVICE_URL", "http://localhost:3001"),
		AuthServiceKey: getEnv("AUTH_SERVICE_KEY", ""),
		AuthJWTSecret:  getEnv("AUTH_JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 1000),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", 15*time.Minute),
		MaxBodyBytes:    int64(getEnvAsInt("MAX_BODY_BYTES", 10<<20)),
	}
}

// Mode reports the deployment mode string surfaced in info and stub
// responses.
func (c *Config) Mode() string {
	if c.DoctorOnlyMode {
		return "doctor-only-development"
	}
	return "development"
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
