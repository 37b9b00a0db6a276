package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/loginwatch/platform/internal/domain"
)

// FileProfileStore keeps baselines in memory and mirrors every mutation to
// a JSON snapshot file: full overwrite per Put, loaded once at startup.
// Acceptable for a single-process deployment only; swap in the Postgres
// backend for anything shared.
type FileProfileStore struct {
	mu     sync.RWMutex
	path   string
	data   map[string]map[string]*domain.Profile
	logger *slog.Logger
}

// NewFileProfileStore loads the snapshot at path, starting empty when the
// file is missing. An unreadable or corrupt snapshot also starts empty:
// the store exists to survive clean restarts, not to be a system of record.
func NewFileProfileStore(path string, logger *slog.Logger) (*FileProfileStore, error) {
	s := &FileProfileStore{
		path:   path,
		data:   make(map[string]map[string]*domain.Profile),
		logger: logger,
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		logger.Warn("profile snapshot corrupt, starting empty", "path", path, "error", err)
		s.data = make(map[string]map[string]*domain.Profile)
	}
	return s, nil
}

func (s *FileProfileStore) Get(_ context.Context, site, username string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[site][username].Clone(), nil
}

func (s *FileProfileStore) Put(_ context.Context, site, username string, p *domain.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[site] == nil {
		s.data[site] = make(map[string]*domain.Profile)
	}
	s.data[site][username] = p.Clone()
	return s.snapshot()
}

func (s *FileProfileStore) All(_ context.Context) (map[string]map[string]*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]*domain.Profile, len(s.data))
	for site, users := range s.data {
		out[site] = make(map[string]*domain.Profile, len(users))
		for username, p := range users {
			out[site][username] = p.Clone()
		}
	}
	return out, nil
}

// snapshot writes the full map atomically via a temp file + rename.
// Callers hold the write lock.
func (s *FileProfileStore) snapshot() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".profiles-*.json")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
