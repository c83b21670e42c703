package emotionrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/innercalm/backend/internal/domain/emotion"
)

// MemoryRepository keeps emotion analyses in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	analyses []emotion.Analysis
	seq      int64
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, analysis emotion.Analysis) (emotion.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	analysis.ID = r.seq
	if analysis.AnalyzedAt.IsZero() {
		analysis.AnalyzedAt = time.Now().UTC()
	}
	r.analyses = append(r.analyses, analysis)
	return analysis, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID int64, since time.Time, limit int) ([]emotion.Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []emotion.Analysis
	for _, analysis := range r.analyses {
		if analysis.UserID == userID && !analysis.AnalyzedAt.Before(since) {
			out = append(out, analysis)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AnalyzedAt.After(out[j].AnalyzedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.analyses[:0]
	for _, analysis := range r.analyses {
		if analysis.UserID != userID {
			kept = append(kept, analysis)
		}
	}
	r.analyses = kept
	return nil
}

var _ emotion.Repository = (*MemoryRepository)(nil)
