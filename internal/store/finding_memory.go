package store

import (
	"context"
	"sync"

	"github.com/Harshitk-cp/synapse/internal/domain"
)

// MemoryFindingStore keeps the pending-findings set in process memory.
// Used when no DATABASE_URL is configured, and by tests. All operations
// are guarded by one mutex, which is what makes Observe atomic.
type MemoryFindingStore struct {
	mu       sync.Mutex
	findings map[string]domain.Finding
}

func NewMemoryFindingStore() *MemoryFindingStore {
	return &MemoryFindingStore{findings: make(map[string]domain.Finding)}
}

func (s *MemoryFindingStore) Observe(ctx context.Context, f *domain.Finding) (*domain.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.findings[f.ID]
	if !ok {
		stored := *f
		stored.Verified = stored.Promotable()
		s.findings[f.ID] = stored
		return &stored, nil
	}

	existing.VerificationCount++
	existing.LastSeen = f.LastSeen
	if f.Confidence > existing.Confidence {
		existing.Confidence = f.Confidence
	}
	existing.Verified = existing.Promotable()
	s.findings[f.ID] = existing
	return &existing, nil
}

func (s *MemoryFindingStore) ListPromotable(ctx context.Context) ([]domain.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Finding
	for _, f := range s.findings {
		if f.Verified && f.Confidence >= domain.FindingConfidenceThreshold {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *MemoryFindingStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.findings[id]; !ok {
		return ErrNotFound
	}
	delete(s.findings, id)
	return nil
}

func (s *MemoryFindingStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings), nil
}

// Get returns a copy of one pending finding. Test helper.
func (s *MemoryFindingStore) Get(id string) (domain.Finding, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.findings[id]
	return f, ok
}
