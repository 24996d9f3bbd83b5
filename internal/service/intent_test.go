package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"github.com/Harshitk-cp/synapse/internal/llm"
	"go.uber.org/zap"
)

func TestClassifyHeuristic(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantIntent domain.Intent
	}{
		{"factual status query", "What is the current status of PayLink?", domain.IntentFactual},
		{"historical query", "What happened to the checkout timeline over time?", domain.IntentHistorical},
		{"causal query", "Why did PayLink fail in Q3? What was the root cause?", domain.IntentCausal},
		{"comparison is mixed", "Compare PayLink versus FastPay", domain.IntentMixed},
		{"cross-category is mixed", "Why is the current status red?", domain.IntentMixed},
	}

	svc := NewIntentService(nil, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.heuristic(tt.query)
			if got.Intent != tt.wantIntent {
				t.Errorf("heuristic(%q) = %s (%.2f), want %s", tt.query, got.Intent, got.Confidence, tt.wantIntent)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("confidence %v outside [0,1]", got.Confidence)
			}
		})
	}
}

func TestClassifyUnknownWithoutKeywords(t *testing.T) {
	svc := NewIntentService(nil, zap.NewNop())

	got := svc.heuristic("purple monkey dishwasher")
	if got.Intent != domain.IntentUnknown {
		t.Fatalf("intent = %s, want unknown", got.Intent)
	}
	if got.Confidence != unknownConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, unknownConfidence)
	}
}

func TestClassifyConfidenceCaps(t *testing.T) {
	svc := NewIntentService(nil, zap.NewNop())

	// Every causal keyword at once still caps at 0.9.
	got := svc.heuristic("why was it caused because the reason led to the root cause result of impact of due to driven by")
	if got.Intent != domain.IntentCausal {
		t.Fatalf("intent = %s, want causal", got.Intent)
	}
	if got.Confidence != singleMaxConfidence {
		t.Errorf("confidence = %v, want capped at %v", got.Confidence, singleMaxConfidence)
	}

	got = svc.heuristic("compare the current status versus the history and the root cause before and after")
	if got.Intent != domain.IntentMixed {
		t.Fatalf("intent = %s, want mixed", got.Intent)
	}
	if got.Confidence > mixedMaxConfidence {
		t.Errorf("confidence = %v, want capped at %v", got.Confidence, mixedMaxConfidence)
	}
}

func TestClassifyEscalation(t *testing.T) {
	generator := llm.NewMockClient()
	generator.ClassifyIntentResponse = "CAUSAL|0.85|The question asks for a cause."
	svc := NewIntentService(generator, zap.NewNop())

	got := svc.Classify(context.Background(), "hmm, the thing about the thing")
	if !got.Escalated {
		t.Fatal("low-confidence heuristic should escalate")
	}
	if got.Intent != domain.IntentCausal || got.Confidence != 0.85 {
		t.Errorf("got %s (%.2f), want causal (0.85)", got.Intent, got.Confidence)
	}
	if len(generator.ClassifyIntentCalls) != 1 {
		t.Errorf("backend called %d times, want 1", len(generator.ClassifyIntentCalls))
	}
}

func TestClassifyEscalationParseFailure(t *testing.T) {
	generator := llm.NewMockClient()
	generator.ClassifyIntentResponse = "I think this is probably causal!"
	svc := NewIntentService(generator, zap.NewNop())

	got := svc.Classify(context.Background(), "gibberish without keywords")
	if got.Intent != domain.IntentMixed || got.Confidence != parseFailureConfidence {
		t.Errorf("got %s (%.2f), want mixed (%.2f)", got.Intent, got.Confidence, parseFailureConfidence)
	}
}

func TestClassifyEscalationBackendError(t *testing.T) {
	generator := llm.NewMockClient()
	generator.ClassifyIntentError = errors.New("backend down")
	svc := NewIntentService(generator, zap.NewNop())

	got := svc.Classify(context.Background(), "gibberish without keywords")
	if got.Intent != domain.IntentMixed || got.Confidence != backendErrorConfidence {
		t.Errorf("got %s (%.2f), want mixed (%.2f)", got.Intent, got.Confidence, backendErrorConfidence)
	}
}

func TestParseIntentLine(t *testing.T) {
	tests := []struct {
		line   string
		ok     bool
		intent domain.Intent
	}{
		{"FACTUAL|0.9|current state question", true, domain.IntentFactual},
		{"historical | 0.6 | asks about the past", true, domain.IntentHistorical},
		{"MIXED|1.4|confidence gets clamped", true, domain.IntentMixed},
		{"FACTUAL|high|not a number", false, ""},
		{"NONSENSE|0.9|unknown enum value", false, ""},
		{"just some text", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		got, ok := parseIntentLine(tt.line)
		if ok != tt.ok {
			t.Errorf("parseIntentLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if ok && got.Intent != tt.intent {
			t.Errorf("parseIntentLine(%q) intent = %s, want %s", tt.line, got.Intent, tt.intent)
		}
		if ok && (got.Confidence < 0 || got.Confidence > 1) {
			t.Errorf("parseIntentLine(%q) confidence %v outside [0,1]", tt.line, got.Confidence)
		}
	}
}

func TestIntentStats(t *testing.T) {
	generator := llm.NewMockClient()
	generator.ClassifyIntentResponse = "UNKNOWN|0.4|unclear"
	svc := NewIntentService(generator, zap.NewNop())

	ctx := context.Background()
	svc.Classify(ctx, "Why did PayLink fail in Q3? What was the root cause of the failure because of the incident that led to it?")
	svc.Classify(ctx, "gibberish")

	stats := svc.Stats()
	if stats.Total != 2 {
		t.Fatalf("total = %d, want 2", stats.Total)
	}
	if stats.Distribution[domain.IntentCausal] != 1 || stats.Distribution[domain.IntentUnknown] != 1 {
		t.Errorf("distribution = %v", stats.Distribution)
	}
	if stats.EscalationRate != 0.5 {
		t.Errorf("escalation rate = %v, want 0.5", stats.EscalationRate)
	}
	if stats.AverageConfidence <= 0 {
		t.Errorf("average confidence = %v", stats.AverageConfidence)
	}
}

func TestIntentHistoryBounded(t *testing.T) {
	svc := NewIntentService(nil, zap.NewNop())
	for i := 0; i < intentHistorySize+50; i++ {
		svc.record(domain.Classification{Intent: domain.IntentFactual, Confidence: 0.9})
	}

	stats := svc.Stats()
	if stats.WindowSize != intentHistorySize {
		t.Errorf("window = %d, want %d", stats.WindowSize, intentHistorySize)
	}
	if stats.Total != intentHistorySize+50 {
		t.Errorf("total = %d, want %d", stats.Total, intentHistorySize+50)
	}
}
