package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrEmptyAnswer    = errors.New("memory answer is empty")
)

// answerEnvelope covers the object shapes the memory backend is known to
// return: a flat answer object, or the same object wrapped in a payload
// or result field.
type answerEnvelope struct {
	Answer            string           `json:"answer"`
	Sources           []rawSource      `json:"sources"`
	Confidence        *float64         `json:"confidence"`
	Entities          []rawEntityRef   `json:"entities"`
	HistoricalContext string           `json:"historical_context"`
	Decisions         []map[string]any `json:"decisions"`
	Payload           json.RawMessage  `json:"payload"`
	Result            json.RawMessage  `json:"result"`
}

type rawSource struct {
	SourceID   string  `json:"source_id"`
	ID         string  `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	EntityName string  `json:"entity_name"`
	Name       string  `json:"name"`
	Content    string  `json:"content"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	TimeRange  string  `json:"time_range"`
}

type rawEntityRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// NormalizeAnswer decodes every answer shape the memory backend produces
// into a single domain.MemoryAnswer. Three shapes are accepted: an answer
// object, a bare list of sources, and an object wrapping either of those
// in a payload/result field. Anything else is an error, caught here so
// orchestration logic never handles raw backend JSON.
func NormalizeAnswer(body []byte) (*domain.MemoryAnswer, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrEmptyAnswer
	}

	// Bare list shape: the backend returned sources only.
	if strings.HasPrefix(trimmed, "[") {
		var sources []rawSource
		if err := json.Unmarshal(body, &sources); err != nil {
			return nil, fmt.Errorf("decode memory source list: %w", err)
		}
		return fromSources(sources), nil
	}

	var env answerEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode memory answer: %w", err)
	}

	// Wrapped shape: recurse one level into payload/result.
	if env.Answer == "" && len(env.Sources) == 0 {
		if len(env.Payload) > 0 {
			return NormalizeAnswer(env.Payload)
		}
		if len(env.Result) > 0 {
			return NormalizeAnswer(env.Result)
		}
	}

	if env.Answer == "" && len(env.Sources) == 0 {
		return nil, ErrEmptyAnswer
	}

	answer := &domain.MemoryAnswer{
		Answer:     env.Answer,
		Confidence: 0.5,
		Historical: env.HistoricalContext,
		Decisions:  env.Decisions,
	}
	if env.Confidence != nil {
		answer.Confidence = clamp01(*env.Confidence)
	}
	for _, s := range env.Sources {
		answer.Sources = append(answer.Sources, normalizeSource(s))
	}
	for _, e := range env.Entities {
		if e.ID == "" {
			continue
		}
		answer.EntityRefs = append(answer.EntityRefs, domain.EntityRef{
			ID:   e.ID,
			Type: domain.EntityType(e.Type),
		})
	}
	if answer.Answer == "" {
		answer.Answer = synthesizeAnswer(answer.Sources)
	}
	return answer, nil
}

func fromSources(raw []rawSource) *domain.MemoryAnswer {
	answer := &domain.MemoryAnswer{Confidence: 0.5}
	var total float64
	for _, s := range raw {
		src := normalizeSource(s)
		answer.Sources = append(answer.Sources, src)
		total += src.Confidence
		if src.EntityID != "" {
			answer.EntityRefs = append(answer.EntityRefs, domain.EntityRef{
				ID:   src.EntityID,
				Type: src.EntityType,
			})
		}
	}
	if len(answer.Sources) > 0 {
		answer.Confidence = clamp01(total / float64(len(answer.Sources)))
	}
	answer.Answer = synthesizeAnswer(answer.Sources)
	return answer
}

func normalizeSource(s rawSource) domain.Source {
	id := s.SourceID
	if id == "" {
		id = s.ID
	}
	name := s.EntityName
	if name == "" {
		name = s.Name
	}
	content := s.Content
	if content == "" {
		content = s.Text
	}
	conf := s.Confidence
	if conf <= 0 {
		conf = 0.5
	}
	return domain.Source{
		SourceID:   id,
		SourceType: domain.SourceTypeMemory,
		EntityType: domain.EntityType(s.EntityType),
		EntityID:   s.EntityID,
		EntityName: name,
		Content:    content,
		Confidence: clamp01(conf),
		TimeRange:  s.TimeRange,
		Verified:   true,
	}
}

func synthesizeAnswer(sources []domain.Source) string {
	var parts []string
	for _, s := range sources {
		if s.Content != "" {
			parts = append(parts, s.Content)
		}
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, " ")
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
