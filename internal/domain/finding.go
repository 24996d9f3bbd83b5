package domain

import "time"

const (
	// VerificationThreshold is the number of independent observations
	// required before a finding may be promoted to a verified fact.
	VerificationThreshold = 2

	// FindingConfidenceThreshold is the minimum confidence for a finding
	// to be accepted into the pending set or promoted out of it.
	FindingConfidenceThreshold = 0.8
)

// Finding is a candidate fact surfaced by retrieval, pending corroboration
// before being written back to memory. ID is content-addressed over the
// normalized content plus sorted entity references.
type Finding struct {
	ID                string      `json:"id"`
	Content           string      `json:"content"`
	Source            string      `json:"source"`
	Confidence        float64     `json:"confidence"`
	Timestamp         time.Time   `json:"timestamp"`
	QueryContext      string      `json:"query_context"`
	EntityReferences  []EntityRef `json:"entity_references,omitempty"`
	Verified          bool        `json:"verified"`
	VerificationCount int         `json:"verification_count"`
	FirstSeen         time.Time   `json:"first_seen"`
	LastSeen          time.Time   `json:"last_seen"`
}

// Promotable reports whether the finding has met both promotion thresholds.
func (f *Finding) Promotable() bool {
	return f.VerificationCount >= VerificationThreshold && f.Confidence >= FindingConfidenceThreshold
}
