package session

import (
	"context"
	"sync"
	"time"

	"github.com/Rounit002/demohavenn/internal/domain/library"
)

type memoryStore struct {
	mu   sync.Mutex
	now  func() time.Time
	ttl  time.Duration
	data map[string]memoryEntry
}

type memoryEntry struct {
	principal library.Principal
	expiresAt time.Time
}

type MemoryStoreConfig struct {
	Now func() time.Time
	TTL time.Duration
}

// NewMemoryStore backs sessions with a process-local map. Used in tests and
// redis-less deployments; sessions do not survive a restart.
func NewMemoryStore(cfg MemoryStoreConfig) Store {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &memoryStore{
		now:  cfg.Now,
		ttl:  cfg.TTL,
		data: make(map[string]memoryEntry),
	}
}

func (s *memoryStore) Get(_ context.Context, token string) (library.Principal, error) {
	if token == "" {
		return library.Principal{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.data[token]
	if !ok {
		return library.Principal{}, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.data, token)
		return library.Principal{}, nil
	}
	return entry.principal, nil
}

func (s *memoryStore) Set(_ context.Context, token string, principal library.Principal) error {
	if token == "" {
		return errEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = memoryEntry{
		principal: principal,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *memoryStore) Destroy(_ context.Context, token string) error {
	if token == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
	return nil
}
