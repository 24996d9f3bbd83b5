package llm

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

// MockClient is a configurable generative client for testing.
// Set the response fields to control what each method returns.
type MockClient struct {
	GenerateResponse       *domain.GeneratedAnswer
	GenerateError          error
	ClassifyIntentResponse string
	ClassifyIntentError    error

	// Call tracking for assertions
	GenerateCalls       []string
	ClassifyIntentCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{
		ClassifyIntentResponse: "MIXED|0.5|mock classification",
	}
}

func (c *MockClient) Generate(ctx context.Context, query string, chunks []domain.Chunk) (*domain.GeneratedAnswer, error) {
	c.GenerateCalls = append(c.GenerateCalls, query)
	if c.GenerateError != nil {
		return nil, c.GenerateError
	}
	if c.GenerateResponse != nil {
		return c.GenerateResponse, nil
	}

	answer := &domain.GeneratedAnswer{
		Text: fmt.Sprintf("Mock answer to %q based on %d documents.", query, len(chunks)),
	}
	for _, ch := range chunks {
		answer.Sources = append(answer.Sources, domain.Source{
			SourceID:   ch.ID,
			SourceType: domain.SourceTypeRetrieval,
			ChunkID:    ch.ID,
			Content:    snippet(ch.Text),
			Confidence: ch.Score,
		})
	}
	return answer, nil
}

func (c *MockClient) ClassifyIntent(ctx context.Context, query string) (string, error) {
	c.ClassifyIntentCalls = append(c.ClassifyIntentCalls, query)
	if c.ClassifyIntentError != nil {
		return "", c.ClassifyIntentError
	}
	return c.ClassifyIntentResponse, nil
}
