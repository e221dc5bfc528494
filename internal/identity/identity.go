// Package identity resolves bearer tokens to platform users. A token is
// first verified (remotely against the identity provider, or locally when
// the signing secret is configured), then the user's profile row supplies
// the role and active flag. Verification happens exactly once per request;
// identities are never cached or shared across requests.
package identity

import (
	"context"
	"errors"
)

// Platform roles. Routes gate on exact string match; there is no hierarchy.
const (
	RoleAdmin        = "admin"
	RoleDoctor       = "doctor"
	RolePatient      = "patient"
	RoleNurse        = "nurse"
	RoleReceptionist = "receptionist"
)

// Rejection reasons. All of them surface to the client as 401 with a
// uniform body; the distinction matters for logs and metrics.
var (
	ErrMissingToken    = errors.New("No token provided")
	ErrInvalidToken    = errors.New("Invalid or expired token")
	ErrProfileNotFound = errors.New("User profile not found")
	ErrAccountInactive = errors.New("Account is deactivated")
)

// Identity is the per-request authenticated caller. It lives for one
// request: attached to forwarded headers, then discarded.
type Identity struct {
	UserID string
	Email  string
	Role   string
	Name   string
	Active bool
}

// Verifier resolves a raw bearer token to the account subject it belongs
// to. Implementations must not retry; a failed verification is terminal
// for the request.
type Verifier interface {
	Verify(ctx context.Context, token string) (Subject, error)
}

// Subject is the account resolved from a token, before profile lookup.
type Subject struct {
	ID    string
	Email string
}

// Profile is the platform-level user record keyed by account id, distinct
// from the domain doctor/patient rows held by the upstream services.
type Profile struct {
	Role   string
	Name   string
	Active bool
}

// ProfileStore looks up the profile for a verified account. A missing row
// is reported as ErrProfileNotFound.
type ProfileStore interface {
	Lookup(ctx context.Context, userID string) (Profile, error)
}
