// internal/configstore/memory.go
package configstore

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"screening-workers/internal/scoring"
)

// MemoryStore keeps the version log in process memory. Publish is
// serialized by a mutex; the active config is swapped through an atomic
// pointer so readers never block on a writer and always see either the old
// or the new config, never a partial one.
type MemoryStore struct {
	mu       sync.Mutex
	versions map[int]scoring.Config
	last     int
	active   atomic.Pointer[scoring.Config]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{versions: make(map[int]scoring.Config)}
}

func (s *MemoryStore) Publish(_ context.Context, cfg scoring.Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.last++
	stored := cfg.Clone()
	stored.Version = s.last
	stored.CreatedAt = time.Now().UTC()
	s.versions[stored.Version] = stored

	activeCopy := stored.Clone()
	s.active.Store(&activeCopy)

	return stored.Version, nil
}

func (s *MemoryStore) GetActive(_ context.Context) (scoring.Config, error) {
	active := s.active.Load()
	if active == nil {
		return scoring.Config{}, ErrNotFound
	}
	return active.Clone(), nil
}

func (s *MemoryStore) GetByVersion(_ context.Context, v int) (scoring.Config, error) {
	s.mu.Lock()
	cfg, ok := s.versions[v]
	s.mu.Unlock()

	if !ok {
		return scoring.Config{}, ErrNotFound
	}
	return cfg.Clone(), nil
}
