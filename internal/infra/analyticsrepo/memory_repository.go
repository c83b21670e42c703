package analyticsrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/innercalm/backend/internal/domain/analytics"
)

// MemoryRepository keeps analytics events in memory. Used in development
// and tests when Postgres is not configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	events []analytics.Event
	nextID int64
}

var _ analytics.EventRepository = (*MemoryRepository)(nil)

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, event analytics.Event) (analytics.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	event.ID = r.nextID
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	r.events = append(r.events, event)
	return event, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID int64, limit int) ([]analytics.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]analytics.Event, 0)
	for _, event := range r.events {
		if event.UserID == userID {
			out = append(out, event)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) CountByType(_ context.Context, userID int64, eventType string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, event := range r.events {
		if event.UserID == userID && event.Type == eventType && !event.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}
