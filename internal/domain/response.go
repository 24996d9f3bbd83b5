package domain

import "time"

type SourceType string

const (
	SourceTypeMemory    SourceType = "memory"
	SourceTypeRetrieval SourceType = "retrieval"
	SourceTypeHybrid    SourceType = "hybrid"
	SourceTypeError     SourceType = "error"
)

type AnswerType string

const (
	AnswerTypeGrounded    AnswerType = "grounded"
	AnswerTypeSpeculative AnswerType = "speculative"
	AnswerTypePartial     AnswerType = "partial"
	AnswerTypeUnknown     AnswerType = "unknown"
)

// Source is a single citation attached to an answer.
type Source struct {
	SourceID   string     `json:"source_id"`
	SourceType SourceType `json:"source_type"`
	EntityType EntityType `json:"entity_type,omitempty"`
	EntityID   string     `json:"entity_id,omitempty"`
	EntityName string     `json:"entity_name,omitempty"`
	DocumentID string     `json:"document_id,omitempty"`
	ChunkID    string     `json:"chunk_id,omitempty"`
	Content    string     `json:"content,omitempty"`
	Confidence float64    `json:"confidence"`
	TimeRange  string     `json:"time_range,omitempty"`
	Verified   bool       `json:"verified"`
}

// ConfidenceBreakdown decomposes an overall confidence score into its
// weighted quality signals. Overall is always derived from the components
// by the calculator, never set independently.
type ConfidenceBreakdown struct {
	Overall            float64  `json:"overall"`
	DataFreshness      float64  `json:"data_freshness"`
	SourceReliability  float64  `json:"source_reliability"`
	EntityGrounding    float64  `json:"entity_grounding"`
	ReasoningCoherence float64  `json:"reasoning_coherence"`
	HistoricalAccuracy *float64 `json:"historical_accuracy,omitempty"`
	Explanation        string   `json:"explanation"`
}

// Guardrails annotates how much trust a client should place in an answer.
// Mutated only by the guardrail step, after the answer body is finalized.
type Guardrails struct {
	AnswerType     AnswerType `json:"answer_type"`
	Warnings       []string   `json:"warnings,omitempty"`
	Limitations    []string   `json:"limitations,omitempty"`
	Contradictions []string   `json:"contradictions,omitempty"`
	FallbackUsed   bool       `json:"fallback_used"`
	MemorySparse   bool       `json:"memory_sparse"`
	LowConfidence  bool       `json:"low_confidence"`
}

// ReasoningStep is one append-only audit-trail entry. Step numbers are
// monotonic within a query and reflect true execution order.
type ReasoningStep struct {
	Step       int       `json:"step"`
	Action     string    `json:"action"`
	Details    string    `json:"details,omitempty"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// UnifiedResponse is the canonical output of one orchestration call.
// It is constructed once per query and immutable once returned.
type UnifiedResponse struct {
	Success            bool                `json:"success"`
	Query              string              `json:"query"`
	Answer             string              `json:"answer"`
	SourceType         SourceType          `json:"source_type"`
	Confidence         ConfidenceBreakdown `json:"confidence"`
	Sources            []Source            `json:"sources"`
	ReasoningTrace     []ReasoningStep     `json:"reasoning_trace"`
	Guardrails         Guardrails          `json:"guardrails"`
	RecommendedActions []string            `json:"recommended_actions,omitempty"`
	Forecast           string              `json:"forecast,omitempty"`
	SharedContext      *ContextProjection  `json:"shared_context,omitempty"`
	Error              string              `json:"error,omitempty"`
}
