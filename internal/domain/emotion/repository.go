package emotion

import (
	"context"
	"time"
)

// Repository abstracts analysis persistence.
type Repository interface {
	Save(ctx context.Context, analysis Analysis) (Analysis, error)
	ListByUser(ctx context.Context, userID int64, since time.Time, limit int) ([]Analysis, error)
	DeleteByUser(ctx context.Context, userID int64) error
}

// Classifier scores a piece of text against the emotion labels. The primary
// implementation calls the hosted inference API; the service falls back to the
// built-in lexicon when classification fails.
type Classifier interface {
	Classify(ctx context.Context, text string) (Scores, error)
}

// Store caches classification results keyed on normalized text so repeated
// messages skip the remote model.
type Store interface {
	Get(ctx context.Context, key string) (Scores, bool, error)
	Set(ctx context.Context, key string, scores Scores, ttl time.Duration) error
}
