package domain

import "context"

// MemoryAnswer is the normalized result of one knowledge-memory query.
// The memory backend returns heterogeneous shapes; the client package
// normalizes all of them into this struct before orchestration sees them.
type MemoryAnswer struct {
	Answer     string
	Sources    []Source
	Confidence float64
	EntityRefs []EntityRef
	Historical string
	Decisions  []map[string]any
}

// EntityRecord is a raw entity snapshot from the memory backend.
type EntityRecord struct {
	ID         string         `json:"id"`
	Type       EntityType     `json:"type"`
	Name       string         `json:"name,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Relationship is a typed edge between two entities in the memory graph.
type Relationship struct {
	FromID string         `json:"from_id"`
	ToID   string         `json:"to_id"`
	Type   string         `json:"type"`
	Weight float64        `json:"weight,omitempty"`
	Attrs  map[string]any `json:"attrs,omitempty"`
}

// MemoryClient is the knowledge-memory collaborator. Implementations own
// retries and wire formats; the orchestrator treats every call as a
// potential failure covered by its fallback table.
type MemoryClient interface {
	Initialize(ctx context.Context) error
	Query(ctx context.Context, query string, queryContext map[string]any) (*MemoryAnswer, error)
	AddEntity(ctx context.Context, record *EntityRecord) error
	AddRelationship(ctx context.Context, rel *Relationship) error
	GetEntity(ctx context.Context, id string) (*EntityRecord, error)
	GetRelationships(ctx context.Context, id string, relType string) ([]Relationship, error)
	Ping(ctx context.Context) error
}

// Chunk is one scored document fragment from the retrieval backend.
type Chunk struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RetrievalClient is the current-document vector-search collaborator.
type RetrievalClient interface {
	Retrieve(ctx context.Context, query string, topK int, productFilter string) ([]Chunk, error)
}

// GeneratedAnswer is the output of the generative-answer collaborator.
type GeneratedAnswer struct {
	Text    string
	Sources []Source
}

// GenerativeClient produces answer text from retrieved chunks and backs
// the intent classifier's escalation path.
type GenerativeClient interface {
	Generate(ctx context.Context, query string, chunks []Chunk) (*GeneratedAnswer, error)

	// ClassifyIntent returns a single "INTENT|CONFIDENCE|REASONING" line.
	ClassifyIntent(ctx context.Context, query string) (string, error)
}
