package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carebridge/hospital-gateway/internal/identity"
	"github.com/carebridge/hospital-gateway/internal/observability/metrics"
	"github.com/carebridge/hospital-gateway/pkg/logging"
)

type contextKey string

const identityKey contextKey = "identity"

// Forwarded identity headers consumed by the upstream services.
const (
	HeaderUserID    = "x-user-id"
	HeaderUserEmail = "x-user-email"
	HeaderUserRole  = "x-user-role"
	HeaderUserName  = "x-user-name"
)

// Authenticate verifies the bearer token, resolves the caller's profile,
// and stamps the identity onto the request: into the context for role
// gates, and into x-user-* headers for the proxied upstream. Any
// client-supplied x-user-* headers are dropped first, authenticated or
// not. Verification runs exactly once; every failure is a terminal 401.
func Authenticate(verifier identity.Verifier, profiles identity.ProfileStore, logger *logging.Logger, m *metrics.GatewayMetrics) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			stripIdentityHeaders(r)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				rejectAuth(w, r, logger, m, "missing_token", identity.ErrMissingToken)
				return
			}

			subject, err := verifier.Verify(r.Context(), token)
			if err != nil {
				rejectAuth(w, r, logger, m, "invalid_token", identity.ErrInvalidToken)
				return
			}

			profile, err := profiles.Lookup(r.Context(), subject.ID)
			if err != nil {
				if errors.Is(err, identity.ErrProfileNotFound) {
					rejectAuth(w, r, logger, m, "profile_not_found", identity.ErrProfileNotFound)
					return
				}
				logger.Error("profile lookup failed", "error", err, "user_id", subject.ID)
				rejectAuth(w, r, logger, m, "profile_not_found", identity.ErrProfileNotFound)
				return
			}
			if !profile.Active {
				rejectAuth(w, r, logger, m, "account_inactive", identity.ErrAccountInactive)
				return
			}

			ident := identity.Identity{
				UserID: subject.ID,
				Email:  subject.Email,
				Role:   profile.Role,
				Name:   profile.Name,
				Active: true,
			}

			r.Header.Set(HeaderUserID, ident.UserID)
			r.Header.Set(HeaderUserEmail, ident.Email)
			r.Header.Set(HeaderUserRole, ident.Role)
			r.Header.Set(HeaderUserName, ident.Name)

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows the request through only when the authenticated
// identity's role matches exactly. No hierarchy, no wildcards.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok || ident.Role != role {
				writeError(w, http.StatusForbidden, "Access denied. "+role+" role required.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(identity.Identity)
	return ident, ok
}

// WithIdentity returns a context carrying ident. Used by tests and by
// handlers that authenticate out of band.
func WithIdentity(ctx context.Context, ident identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

func bearerToken(header string) (string, bool) {
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

func stripIdentityHeaders(r *http.Request) {
	r.Header.Del(HeaderUserID)
	r.Header.Del(HeaderUserEmail)
	r.Header.Del(HeaderUserRole)
	r.Header.Del(HeaderUserName)
}

func rejectAuth(w http.ResponseWriter, r *http.Request, logger *logging.Logger, m *metrics.GatewayMetrics, reason string, err error) {
	logger.Warn("authentication rejected",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
	)
	m.ObserveAuthFailure(reason)
	writeError(w, http.StatusUnauthorized, err.Error())
}
