package store

import (
	"context"
	"sync"

	"github.com/loginwatch/platform/internal/domain"
)

// MemoryProfileStore keeps baselines in a process-lifetime map.
type MemoryProfileStore struct {
	mu   sync.RWMutex
	data map[string]map[string]*domain.Profile // site -> username -> profile
}

// NewMemoryProfileStore creates an empty in-memory profile store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{data: make(map[string]map[string]*domain.Profile)}
}

func (m *MemoryProfileStore) Get(_ context.Context, site, username string) (*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[site][username].Clone(), nil
}

func (m *MemoryProfileStore) Put(_ context.Context, site, username string, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[site] == nil {
		m.data[site] = make(map[string]*domain.Profile)
	}
	m.data[site][username] = p.Clone()
	return nil
}

func (m *MemoryProfileStore) All(_ context.Context) (map[string]map[string]*domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]map[string]*domain.Profile, len(m.data))
	for site, users := range m.data {
		out[site] = make(map[string]*domain.Profile, len(users))
		for username, p := range users {
			out[site][username] = p.Clone()
		}
	}
	return out, nil
}

// MemorySessionStore keeps session state in a process-lifetime map. The
// default backend; lock state does not survive a restart.
type MemorySessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Session
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{data: make(map[string]*domain.Session)}
}

func (m *MemorySessionStore) Get(_ context.Context, username string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[username]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (m *MemorySessionStore) Put(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.data[s.Username] = &clone
	return nil
}

func (m *MemorySessionStore) All(_ context.Context) (map[string]*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*domain.Session, len(m.data))
	for username, s := range m.data {
		clone := *s
		out[username] = &clone
	}
	return out, nil
}

// MemoryAlertLog is the append-only in-memory alert list.
type MemoryAlertLog struct {
	mu     sync.RWMutex
	alerts []*domain.AnomalyAlert
}

// NewMemoryAlertLog creates an empty alert log.
func NewMemoryAlertLog() *MemoryAlertLog {
	return &MemoryAlertLog{alerts: []*domain.AnomalyAlert{}}
}

func (m *MemoryAlertLog) Append(_ context.Context, a *domain.AnomalyAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, a)
	return nil
}

func (m *MemoryAlertLog) List(_ context.Context) ([]*domain.AnomalyAlert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.AnomalyAlert(nil), m.alerts...), nil
}
