package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carebridge/hospital-gateway/internal/identity"
)

type stubVerifier struct {
	subject identity.Subject
	err     error
}

func (s stubVerifier) Verify(_ context.Context, _ string) (identity.Subject, error) {
	return s.subject, s.err
}

type stubProfiles struct {
	profile identity.Profile
	err     error
}

func (s stubProfiles) Lookup(_ context.Context, _ string) (identity.Profile, error) {
	return s.profile, s.err
}

func authFixture(v identity.Verifier, p identity.ProfileStore) (http.Handler, *http.Request) {
	var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mw := Authenticate(v, p, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/doctors/1", nil)
	return mw(inner), req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestAuthenticateMissingHeader(t *testing.T) {
	handler, req := authFixture(stubVerifier{}, stubProfiles{})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["success"] != false {
		t.Errorf("expected success:false body, got %v", body)
	}
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	handler, req := authFixture(stubVerifier{}, stubProfiles{})
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", rec.Code)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	handler, req := authFixture(stubVerifier{err: identity.ErrInvalidToken}, stubProfiles{})
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != identity.ErrInvalidToken.Error() {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestAuthenticateProfileNotFound(t *testing.T) {
	handler, req := authFixture(
		stubVerifier{subject: identity.Subject{ID: "u1"}},
		stubProfiles{err: identity.ErrProfileNotFound},
	)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	handler, req := authFixture(
		stubVerifier{subject: identity.Subject{ID: "u1"}},
		stubProfiles{profile: identity.Profile{Role: "doctor", Active: false}},
	)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive account, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != identity.ErrAccountInactive.Error() {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestAuthenticateSetsIdentityHeadersAndContext(t *testing.T) {
	var seen identity.Identity
	var seenHeaders http.Header
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		seenHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	})
	mw := Authenticate(
		stubVerifier{subject: identity.Subject{ID: "u1", Email: "doc@example.com"}},
		stubProfiles{profile: identity.Profile{Role: "doctor", Name: "Dr. Tran", Active: true}},
		nil, nil,
	)

	req := httptest.NewRequest(http.MethodGet, "/api/doctors/1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	// Spoofed identity headers must never survive.
	req.Header.Set(HeaderUserRole, "admin")
	req.Header.Set(HeaderUserID, "attacker")
	rec := httptest.NewRecorder()

	mw(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen.UserID != "u1" || seen.Role != "doctor" {
		t.Errorf("unexpected context identity: %+v", seen)
	}
	if got := seenHeaders.Get(HeaderUserRole); got != "doctor" {
		t.Errorf("expected x-user-role doctor, got %q", got)
	}
	if got := seenHeaders.Get(HeaderUserID); got != "u1" {
		t.Errorf("expected spoofed x-user-id replaced, got %q", got)
	}
	if got := seenHeaders.Get(HeaderUserName); got != "Dr. Tran" {
		t.Errorf("expected x-user-name set, got %q", got)
	}
}

func TestRequireRoleMatch(t *testing.T) {
	called := false
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity.Identity{Role: "doctor"}))
	rec := httptest.NewRecorder()

	RequireRole("doctor")(inner).ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected handler to run for matching role")
	}
}

func TestRequireRoleMismatch(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity.Identity{Role: "patient"}))
	rec := httptest.NewRecorder()

	RequireRole("admin")(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body["error"] != "Access denied. admin role required." {
		t.Errorf("unexpected error message: %v", body["error"])
	}
}

func TestRequireRoleMissingIdentity(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})
	req := httptest.NewRequest(http.MethodGet, "/api/doctors", nil)
	rec := httptest.NewRecorder()

	RequireRole("doctor")(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
