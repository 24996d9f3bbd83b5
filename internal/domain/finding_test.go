package domain

import "testing"

func TestPromotable(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		confidence float64
		want       bool
	}{
		{"twice seen high confidence", 2, 0.85, true},
		{"many observations", 5, 0.9, true},
		{"exactly at thresholds", 2, 0.8, true},
		{"single observation", 1, 0.95, false},
		{"never observed", 0, 0.95, false},
		{"corroborated but low confidence", 3, 0.79, false},
		{"both below", 1, 0.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Finding{VerificationCount: tt.count, Confidence: tt.confidence}
			if got := f.Promotable(); got != tt.want {
				t.Errorf("Promotable() with count=%d confidence=%v = %v, want %v",
					tt.count, tt.confidence, got, tt.want)
			}
		})
	}
}

func TestEntityTypeIDPrefix(t *testing.T) {
	tests := []struct {
		entityType EntityType
		want       string
	}{
		{EntityTypeProduct, "prod_"},
		{EntityTypeRisk, "risk_"},
		{EntityTypeDependency, "dep_"},
		{EntityTypeAction, "act_"},
		{EntityTypeOutcome, "out_"},
		{EntityTypeFact, "entity_"},
	}

	for _, tt := range tests {
		if got := tt.entityType.IDPrefix(); got != tt.want {
			t.Errorf("IDPrefix(%s) = %q, want %q", tt.entityType, got, tt.want)
		}
	}
}
