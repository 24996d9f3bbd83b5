package memory

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

// MockClient is a configurable memory client for testing.
type MockClient struct {
	mu sync.Mutex

	QueryResponse    *domain.MemoryAnswer
	QueryError       error
	Entities         map[string]*domain.EntityRecord
	GetEntityError   error
	AddEntityError   error
	PingError        error
	RelationshipsOut []domain.Relationship

	// Call tracking for assertions
	QueryCalls     []string
	AddedEntities  []domain.EntityRecord
	AddedRelations []domain.Relationship
	GetEntityCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{Entities: make(map[string]*domain.EntityRecord)}
}

func (m *MockClient) Initialize(ctx context.Context) error { return nil }

func (m *MockClient) Query(ctx context.Context, query string, queryContext map[string]any) (*domain.MemoryAnswer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls = append(m.QueryCalls, query)
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	if m.QueryResponse != nil {
		return m.QueryResponse, nil
	}
	return &domain.MemoryAnswer{Answer: "mock memory answer", Confidence: 0.7}, nil
}

func (m *MockClient) AddEntity(ctx context.Context, record *domain.EntityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddEntityError != nil {
		return m.AddEntityError
	}
	m.AddedEntities = append(m.AddedEntities, *record)
	m.Entities[record.ID] = record
	return nil
}

func (m *MockClient) AddRelationship(ctx context.Context, rel *domain.Relationship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddedRelations = append(m.AddedRelations, *rel)
	return nil
}

func (m *MockClient) GetEntity(ctx context.Context, id string) (*domain.EntityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetEntityCalls = append(m.GetEntityCalls, id)
	if m.GetEntityError != nil {
		return nil, m.GetEntityError
	}
	record, ok := m.Entities[id]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return record, nil
}

func (m *MockClient) GetRelationships(ctx context.Context, id string, relType string) ([]domain.Relationship, error) {
	return m.RelationshipsOut, nil
}

func (m *MockClient) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PingError
}
