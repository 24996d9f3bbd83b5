package service

import (
	"time"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

// fallbackOverall is the fixed degraded-trust score carried by the
// canonical fallback response. Every component is set to the same value so
// the derived overall equals it exactly.
const fallbackOverall = 0.4

// ErrorResponse is the canonical shape for a total failure: both backends
// down or an unexpected fault. The trace gains one terminal step
// describing the error.
func ErrorResponse(query, errMsg string, trace []domain.ReasoningStep) *domain.UnifiedResponse {
	trace = append(trace, domain.ReasoningStep{
		Step:      len(trace) + 1,
		Action:    "failed",
		Details:   errMsg,
		Timestamp: time.Now().UTC(),
	})

	return &domain.UnifiedResponse{
		Success:    false,
		Query:      query,
		SourceType: domain.SourceTypeError,
		Confidence: domain.ConfidenceBreakdown{
			Explanation: "no answer produced: " + errMsg,
		},
		Sources:        []domain.Source{},
		ReasoningTrace: trace,
		Guardrails: domain.Guardrails{
			AnswerType:   domain.AnswerTypeUnknown,
			FallbackUsed: true,
		},
		Error: errMsg,
	}
}

// FallbackBreakdown is the degraded-trust confidence attached to partial
// answers assembled after one source failed: still a success, but flagged
// and discounted.
func FallbackBreakdown() domain.ConfidenceBreakdown {
	return domain.ConfidenceBreakdown{
		Overall:            fallbackOverall,
		DataFreshness:      fallbackOverall,
		SourceReliability:  fallbackOverall,
		EntityGrounding:    fallbackOverall,
		ReasoningCoherence: fallbackOverall,
		Explanation:        "degraded answer produced via fallback; treat with reduced trust",
	}
}
