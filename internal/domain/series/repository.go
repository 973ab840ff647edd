package series

import "context"

// Repository stores resolved series identities keyed by canonical slug.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (Series, bool, error)
	Upsert(ctx context.Context, record Series) error
}
