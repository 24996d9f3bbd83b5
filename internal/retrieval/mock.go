package retrieval

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

// MockClient is a configurable retrieval client for testing.
type MockClient struct {
	mu sync.Mutex

	Chunks        []domain.Chunk
	RetrieveError error

	// Call tracking for assertions
	RetrieveCalls []RetrieveCall
}

type RetrieveCall struct {
	Query         string
	TopK          int
	ProductFilter string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Chunks: []domain.Chunk{
			{ID: "chunk-1", Text: "Mock document content.", Score: 0.85},
		},
	}
}

func (m *MockClient) Retrieve(ctx context.Context, query string, topK int, productFilter string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RetrieveCalls = append(m.RetrieveCalls, RetrieveCall{Query: query, TopK: topK, ProductFilter: productFilter})
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}
	return m.Chunks, nil
}
