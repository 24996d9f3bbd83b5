package domain

import "context"

// FindingStore holds the pending-findings set for the feedback loop.
// Observe must be atomic: two concurrent observations of the same finding
// id must both be counted.
type FindingStore interface {
	// Observe inserts the finding, or, when an entry with the same id is
	// already pending, increments its verification count, refreshes
	// last_seen, and keeps the higher confidence. The returned finding is
	// the stored state after the observation, with Verified set once both
	// promotion thresholds are met.
	Observe(ctx context.Context, f *Finding) (*Finding, error)

	// ListPromotable returns all pending findings ready for promotion.
	ListPromotable(ctx context.Context) ([]Finding, error)

	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
