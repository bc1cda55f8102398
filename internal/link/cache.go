package link

import (
	"context"
	"time"
)

// Cache is a best-effort, TTL-bounded mirror of individual link records,
// consulted before the authoritative store on reads. Entries are bounded
// by their own TTL, so a missed invalidation heals on its own.
type Cache interface {
	// Get returns the cached record for id and whether it was present.
	Get(ctx context.Context, id string) (Link, bool, error)
	// Set caches the record for its id with the given entry TTL.
	Set(ctx context.Context, link Link, ttl time.Duration) error
	// Delete removes the cached record for id. Deleting an absent entry
	// is not an error.
	Delete(ctx context.Context, id string) error
}
