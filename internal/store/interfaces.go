// Package store holds the persistence interfaces for baselines, sessions,
// and alerts, plus the in-memory, file, Postgres, and Redis backends.
package store

import (
	"context"

	"github.com/loginwatch/platform/internal/domain"
)

// ProfileStore persists behavioral baselines keyed by (site, username).
// Implementations return a deep copy from Get so callers can mutate freely;
// a mutation becomes visible only through Put.
type ProfileStore interface {
	// Get returns the profile, or (nil, nil) when none exists.
	Get(ctx context.Context, site, username string) (*domain.Profile, error)
	// Put stores the profile, replacing any existing one.
	Put(ctx context.Context, site, username string, p *domain.Profile) error
	// All returns every stored profile grouped by site then username.
	All(ctx context.Context) (map[string]map[string]*domain.Profile, error)
}

// SessionStore persists rolling per-username session state.
type SessionStore interface {
	// Get returns the session, or (nil, nil) for a first-time username.
	Get(ctx context.Context, username string) (*domain.Session, error)
	// Put stores the session keyed by its username.
	Put(ctx context.Context, s *domain.Session) error
	// All returns every stored session keyed by username.
	All(ctx context.Context) (map[string]*domain.Session, error)
}

// AlertLog is an append-only record of anomaly alerts.
type AlertLog interface {
	Append(ctx context.Context, a *domain.AnomalyAlert) error
	// List returns all alerts in append order.
	List(ctx context.Context) ([]*domain.AnomalyAlert, error)
}
