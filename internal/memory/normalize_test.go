package memory

import (
	"errors"
	"testing"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

func TestNormalizeAnswerObjectShape(t *testing.T) {
	body := []byte(`{
		"answer": "PayLink launched in Q1.",
		"confidence": 0.9,
		"sources": [{"id": "src-1", "entity_id": "prod_abc", "entity_type": "product", "content": "launch record", "confidence": 0.9}],
		"entities": [{"id": "prod_abc", "type": "product"}],
		"historical_context": "Launched after two delays."
	}`)

	answer, err := NormalizeAnswer(body)
	if err != nil {
		t.Fatalf("NormalizeAnswer() error = %v", err)
	}
	if answer.Answer != "PayLink launched in Q1." {
		t.Errorf("answer = %q", answer.Answer)
	}
	if answer.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", answer.Confidence)
	}
	if len(answer.Sources) != 1 || answer.Sources[0].SourceType != domain.SourceTypeMemory {
		t.Errorf("sources = %+v", answer.Sources)
	}
	if len(answer.EntityRefs) != 1 || answer.EntityRefs[0].ID != "prod_abc" {
		t.Errorf("entity refs = %+v", answer.EntityRefs)
	}
	if answer.Historical == "" {
		t.Error("historical context dropped")
	}
}

func TestNormalizeAnswerListShape(t *testing.T) {
	body := []byte(`[
		{"id": "s1", "text": "Risk raised in March.", "confidence": 0.8, "entity_id": "risk_x", "entity_type": "risk"},
		{"id": "s2", "text": "Mitigation assigned.", "confidence": 0.6}
	]`)

	answer, err := NormalizeAnswer(body)
	if err != nil {
		t.Fatalf("NormalizeAnswer() error = %v", err)
	}
	if len(answer.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(answer.Sources))
	}
	if answer.Answer == "" {
		t.Error("answer should be synthesized from source content")
	}
	if answer.Confidence != 0.7 {
		t.Errorf("confidence = %v, want mean 0.7", answer.Confidence)
	}
	if len(answer.EntityRefs) != 1 || answer.EntityRefs[0].Type != domain.EntityTypeRisk {
		t.Errorf("entity refs = %+v", answer.EntityRefs)
	}
}

func TestNormalizeAnswerWrappedShape(t *testing.T) {
	body := []byte(`{"payload": {"answer": "wrapped", "confidence": 0.75, "sources": []}}`)

	answer, err := NormalizeAnswer(body)
	if err != nil {
		t.Fatalf("NormalizeAnswer() error = %v", err)
	}
	if answer.Answer != "wrapped" || answer.Confidence != 0.75 {
		t.Errorf("got %+v", answer)
	}

	body = []byte(`{"result": [{"id": "s1", "text": "nested list", "confidence": 0.9}]}`)
	answer, err = NormalizeAnswer(body)
	if err != nil {
		t.Fatalf("NormalizeAnswer() error = %v", err)
	}
	if len(answer.Sources) != 1 {
		t.Errorf("got %d sources, want 1", len(answer.Sources))
	}
}

func TestNormalizeAnswerRejectsGarbage(t *testing.T) {
	for _, body := range []string{"", "null", "{}", `{"unrelated": true}`, "not json"} {
		if _, err := NormalizeAnswer([]byte(body)); err == nil {
			t.Errorf("NormalizeAnswer(%q) should fail", body)
		}
	}
	if _, err := NormalizeAnswer([]byte("{}")); !errors.Is(err, ErrEmptyAnswer) {
		t.Error("empty object should map to ErrEmptyAnswer")
	}
}

func TestNormalizeAnswerClampsConfidence(t *testing.T) {
	answer, err := NormalizeAnswer([]byte(`{"answer": "x", "confidence": 1.7}`))
	if err != nil {
		t.Fatalf("NormalizeAnswer() error = %v", err)
	}
	if answer.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", answer.Confidence)
	}
}
