package recrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/innercalm/backend/internal/domain/recommendation"
)

// MemoryRepository keeps recommendations in memory. Used in development and
// tests when Postgres is not configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	items  map[int64]recommendation.Recommendation
	nextID int64
}

var _ recommendation.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]recommendation.Recommendation)}
}

func (r *MemoryRepository) Save(_ context.Context, rec recommendation.Recommendation) (recommendation.Recommendation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	rec.ID = r.nextID
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	r.items[rec.ID] = rec
	return rec, nil
}

func (r *MemoryRepository) Get(_ context.Context, id, userID int64) (recommendation.Recommendation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok || rec.UserID != userID {
		return recommendation.Recommendation{}, false, nil
	}
	return rec, true, nil
}

func (r *MemoryRepository) List(_ context.Context, userID int64, filter recommendation.ListFilter) ([]recommendation.Recommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]recommendation.Recommendation, 0)
	for _, rec := range r.items {
		if rec.UserID != userID {
			continue
		}
		if filter.Completed != nil && rec.IsCompleted != *filter.Completed {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, rec recommendation.Recommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[rec.ID]; ok && existing.UserID == rec.UserID {
		r.items[rec.ID] = rec
	}
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec, ok := r.items[id]; ok && rec.UserID == userID {
		delete(r.items, id)
	}
	return nil
}
