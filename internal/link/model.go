package link

import "time"

// Link is the persisted mapping from a short identifier to its target URL.
// Records are immutable after creation; they disappear through explicit
// deletion or the expiry sweeper.
type Link struct {
	ID        string
	TargetURL string
	ExpiresAt *time.Time // nil means the link never expires
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired reports whether the link's expiry has passed at now.
// A link with no expiry never expires.
func (l Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}
