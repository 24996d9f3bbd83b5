package service

import (
	"math"
	"testing"
)

func TestCalculateConfidenceWeights(t *testing.T) {
	total := WeightFreshness + WeightReliability + WeightGrounding + WeightCoherence
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("weights sum to %v, want 1.0", total)
	}
}

func TestCalculateConfidenceBounds(t *testing.T) {
	one := 1.0
	zero := 0.0
	tests := []struct {
		name        string
		freshness   float64
		reliability float64
		grounding   float64
		coherence   float64
		historical  *float64
	}{
		{"all zero", 0, 0, 0, 0, nil},
		{"all one", 1, 1, 1, 1, nil},
		{"all one with perfect history", 1, 1, 1, 1, &one},
		{"all one with zero history", 1, 1, 1, 1, &zero},
		{"out of range inputs", 2.5, -1, 1.3, 0.5, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := CalculateConfidence(tt.freshness, tt.reliability, tt.grounding, tt.coherence, tt.historical)
			if b.Overall < 0 || b.Overall > 1 {
				t.Errorf("overall = %v, outside [0,1]", b.Overall)
			}
			if b.Explanation == "" {
				t.Error("explanation must not be empty")
			}
		})
	}
}

func TestCalculateConfidenceCalibration(t *testing.T) {
	base := CalculateConfidence(0.8, 0.8, 0.8, 0.8, nil)

	perfect := 1.0
	calibrated := CalculateConfidence(0.8, 0.8, 0.8, 0.8, &perfect)
	if math.Abs(calibrated.Overall-base.Overall) > 1e-9 {
		t.Errorf("perfect historical accuracy changed overall: %v vs %v", calibrated.Overall, base.Overall)
	}

	none := 0.0
	discounted := CalculateConfidence(0.8, 0.8, 0.8, 0.8, &none)
	want := base.Overall * 0.7
	if math.Abs(discounted.Overall-want) > 1e-9 {
		t.Errorf("zero historical accuracy: overall = %v, want %v", discounted.Overall, want)
	}
}

func TestCalculateConfidenceDerivedOverall(t *testing.T) {
	b := CalculateConfidence(0.5, 1.0, 0.25, 0.75, nil)
	want := 0.5*WeightFreshness + 1.0*WeightReliability + 0.25*WeightGrounding + 0.75*WeightCoherence
	if math.Abs(b.Overall-want) > 1e-9 {
		t.Errorf("overall = %v, want %v", b.Overall, want)
	}
}

func TestCombineConfidence(t *testing.T) {
	combined := CombineConfidence(0.9, 0.5, 0.6)
	want := 0.9*0.6 + 0.5*0.4
	if math.Abs(combined-want) > 1e-9 {
		t.Errorf("combined = %v, want %v", combined, want)
	}

	// Blend of two in-range confidences stays strictly between them.
	if combined <= 0.5 || combined >= 0.9 {
		t.Errorf("combined = %v, want strictly between 0.5 and 0.9", combined)
	}
}
