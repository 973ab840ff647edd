package standings

import "context"

// Repository stores the latest computed table per series slug.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (Table, bool, error)
	Replace(ctx context.Context, table Table) error
}
