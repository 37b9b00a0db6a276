package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/loginwatch/platform/internal/domain"
)

// PgProfileStore persists baselines as JSONB rows keyed by (site, username).
// One row per profile; Put upserts, so writers get last-write-wins at the
// row level rather than the whole-file level.
type PgProfileStore struct {
	pool *pgxpool.Pool
}

// NewPgProfileStore creates a Postgres-backed profile store.
func NewPgProfileStore(pool *pgxpool.Pool) *PgProfileStore {
	return &PgProfileStore{pool: pool}
}

func (s *PgProfileStore) Get(ctx context.Context, site, username string) (*domain.Profile, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM login_profiles WHERE site = $1 AND username = $2`,
		site, username).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	p := &domain.Profile{}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode profile %s/%s: %w", site, username, err)
	}
	return p, nil
}

func (s *PgProfileStore) Put(ctx context.Context, site, username string, p *domain.Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO login_profiles (site, username, profile)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (site, username)
		 DO UPDATE SET profile = EXCLUDED.profile, updated_at = now()`,
		site, username, raw)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *PgProfileStore) All(ctx context.Context) (map[string]map[string]*domain.Profile, error) {
	rows, err := s.pool.Query(ctx, `SELECT site, username, profile FROM login_profiles`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[string]*domain.Profile)
	for rows.Next() {
		var site, username string
		var raw []byte
		if err := rows.Scan(&site, &username, &raw); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		p := &domain.Profile{}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("decode profile %s/%s: %w", site, username, err)
		}
		if out[site] == nil {
			out[site] = make(map[string]*domain.Profile)
		}
		out[site][username] = p
	}
	return out, rows.Err()
}
