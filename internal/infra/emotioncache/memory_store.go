package emotioncache

import (
	"context"
	"sync"
	"time"

	"github.com/innercalm/backend/internal/domain/emotion"
)

// MemoryStore caches classification scores in process memory with TTL.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
}

type entry struct {
	scores    emotion.Scores
	expiresAt time.Time
}

// NewMemoryStore constructs an empty cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (emotion.Scores, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.scores, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, scores emotion.Scores, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}
	s.entries[key] = entry{scores: scores, expiresAt: expires}
	return nil
}

var _ emotion.Store = (*MemoryStore)(nil)
