package recommendation

import "context"

// Repository abstracts recommendation persistence.
type Repository interface {
	Save(ctx context.Context, rec Recommendation) (Recommendation, error)
	Get(ctx context.Context, id, userID int64) (Recommendation, bool, error)
	List(ctx context.Context, userID int64, filter ListFilter) ([]Recommendation, error)
	Update(ctx context.Context, rec Recommendation) error
	Delete(ctx context.Context, id, userID int64) error
}
