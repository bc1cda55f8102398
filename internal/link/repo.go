package link

import (
	"context"
	"time"
)

// Repository defines the authoritative persistence operations for Link
// records. It abstracts the underlying data store; the store remains the
// single source of truth for existence.
type Repository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, link Link) (Link, error)
	GetByID(ctx context.Context, id string) (Link, error)
	Delete(ctx context.Context, id string) error
	ListExpiredBefore(ctx context.Context, t time.Time) ([]Link, error)
}
