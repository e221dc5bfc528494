package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the slice of pgx a profile store needs. Both *pgxpool.Pool
// and pgxmock satisfy it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgxProfileStore reads profiles from Postgres.
type PgxProfileStore struct {
	db Querier
}

// NewPgxProfileStore creates a profile store over db.
func NewPgxProfileStore(db Querier) *PgxProfileStore {
	return &PgxProfileStore{db: db}
}

// Lookup fetches the profile row for userID. A missing row maps to
// ErrProfileNotFound; the active flag is returned as-is for the caller to
// enforce.
func (s *PgxProfileStore) Lookup(ctx context.Context, userID string) (Profile, error) {
	var p Profile
	err := s.db.QueryRow(ctx,
		`SELECT role, full_name, is_active FROM profiles WHERE id = $1`,
		userID,
	).Scan(&p.Role, &p.Name, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("identity: lookup profile: %w", err)
	}
	return p, nil
}
