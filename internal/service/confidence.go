package service

import (
	"fmt"
	"sort"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

// Component weights. Fixed constants summing to 1.0.
const (
	WeightFreshness   = 0.25
	WeightReliability = 0.30
	WeightGrounding   = 0.20
	WeightCoherence   = 0.25

	// Historical-accuracy calibration: perfect accuracy leaves the
	// weighted score unchanged, zero accuracy discounts it by 30%.
	historicalCalibrationFloor = 0.7
	historicalCalibrationSpan  = 0.3

	// DefaultBlendWeight is the default memory-side weight when combining
	// two independently computed confidences.
	DefaultBlendWeight = 0.6
)

// CalculateConfidence combines weighted quality signals into a calibrated
// breakdown. Pure function, no side effects. Components are clamped to
// [0,1] before weighting; Overall is always derived, never set directly.
func CalculateConfidence(freshness, reliability, grounding, coherence float64, historicalAccuracy *float64) domain.ConfidenceBreakdown {
	freshness = clamp01(freshness)
	reliability = clamp01(reliability)
	grounding = clamp01(grounding)
	coherence = clamp01(coherence)

	overall := freshness*WeightFreshness +
		reliability*WeightReliability +
		grounding*WeightGrounding +
		coherence*WeightCoherence

	breakdown := domain.ConfidenceBreakdown{
		DataFreshness:      freshness,
		SourceReliability:  reliability,
		EntityGrounding:    grounding,
		ReasoningCoherence: coherence,
	}

	if historicalAccuracy != nil {
		ha := clamp01(*historicalAccuracy)
		breakdown.HistoricalAccuracy = &ha
		overall *= historicalCalibrationFloor + historicalCalibrationSpan*ha
	}

	breakdown.Overall = clamp01(overall)
	breakdown.Explanation = explainConfidence(breakdown)
	return breakdown
}

// CombineConfidence linearly blends two independently computed confidences.
// Used when merging memory- and retrieval-path answers; not itself a
// component of the breakdown.
func CombineConfidence(confA, confB, weightA float64) float64 {
	weightA = clamp01(weightA)
	return clamp01(confA*weightA + confB*(1-weightA))
}

func explainConfidence(b domain.ConfidenceBreakdown) string {
	components := []struct {
		name  string
		value float64
	}{
		{"source reliability", b.SourceReliability},
		{"data freshness", b.DataFreshness},
		{"reasoning coherence", b.ReasoningCoherence},
		{"entity grounding", b.EntityGrounding},
	}
	sort.SliceStable(components, func(i, j int) bool {
		return components[i].value < components[j].value
	})

	explanation := fmt.Sprintf("overall %.2f; weakest signal: %s (%.2f)",
		b.Overall, components[0].name, components[0].value)
	if b.HistoricalAccuracy != nil {
		explanation += fmt.Sprintf("; calibrated by historical accuracy %.2f", *b.HistoricalAccuracy)
	}
	return explanation
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
