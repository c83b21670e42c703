package analytics

import (
	"context"
	"time"
)

// EventRepository abstracts analytics event persistence.
type EventRepository interface {
	Save(ctx context.Context, event Event) (Event, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]Event, error)
	CountByType(ctx context.Context, userID int64, eventType string, since time.Time) (int, error)
}
