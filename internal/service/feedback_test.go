package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"github.com/Harshitk-cp/synapse/internal/memory"
	"github.com/Harshitk-cp/synapse/internal/store"
	"go.uber.org/zap"
)

func newFeedbackFixture() (*FeedbackService, *store.MemoryFindingStore, *memory.MockClient) {
	findings := store.NewMemoryFindingStore()
	client := memory.NewMockClient()
	return NewFeedbackService(findings, client, zap.NewNop()), findings, client
}

func TestAddFindingRejectsLowConfidence(t *testing.T) {
	svc, findings, _ := newFeedbackFixture()
	ctx := context.Background()

	if _, ok := svc.AddFinding(ctx, "PayLink latency doubled", "doc-1", 0.79, "q", nil); ok {
		t.Error("confidence 0.79 must be rejected")
	}
	if _, ok := svc.AddFinding(ctx, "   ", "doc-1", 0.9, "q", nil); ok {
		t.Error("empty content must be rejected")
	}
	if n, _ := findings.Count(ctx); n != 0 {
		t.Errorf("pending count = %d, want 0", n)
	}
}

func TestFindingPromotionLifecycle(t *testing.T) {
	svc, findings, _ := newFeedbackFixture()
	ctx := context.Background()
	refs := []domain.EntityRef{{ID: "prod_abc", Type: domain.EntityTypeProduct}}

	id, ok := svc.AddFinding(ctx, "PayLink latency doubled in Q3", "doc-1", 0.85, "query one", refs)
	if !ok || id == "" {
		t.Fatal("first observation rejected")
	}

	f, _ := findings.Get(id)
	if f.Verified || f.VerificationCount != 1 {
		t.Fatalf("after one observation: %+v", f)
	}

	// Second matching observation promotes. Casing and whitespace of the
	// content do not change the id.
	id2, ok := svc.AddFinding(ctx, "  PAYLINK LATENCY DOUBLED IN Q3 ", "doc-2", 0.82, "query two", refs)
	if !ok || id2 != id {
		t.Fatalf("dedupe failed: %s vs %s", id, id2)
	}

	f, _ = findings.Get(id)
	if !f.Verified {
		t.Fatal("finding observed twice at 0.85 must be verified")
	}
	if f.VerificationCount != 2 {
		t.Errorf("verification count = %d, want 2", f.VerificationCount)
	}
	if f.Confidence != 0.85 {
		t.Errorf("confidence = %v, want the higher observation kept", f.Confidence)
	}
}

func TestFindingSingleObservationNeverPromotes(t *testing.T) {
	svc, _, client := newFeedbackFixture()
	ctx := context.Background()

	svc.AddFinding(ctx, "observed exactly once", "doc-1", 0.95, "q", nil)
	if promoted := svc.ProcessPending(ctx); promoted != 0 {
		t.Errorf("promoted %d findings, want 0", promoted)
	}
	if len(client.AddedEntities) != 0 {
		t.Error("nothing should be persisted")
	}
}

func TestProcessPendingPersistsAndRemoves(t *testing.T) {
	svc, findings, client := newFeedbackFixture()
	ctx := context.Background()
	refs := []domain.EntityRef{{ID: "prod_abc", Type: domain.EntityTypeProduct}}

	svc.AddFinding(ctx, "PayLink latency doubled", "doc-1", 0.85, "q1", refs)
	svc.AddFinding(ctx, "PayLink latency doubled", "doc-2", 0.85, "q2", refs)

	promoted := svc.ProcessPending(ctx)
	if promoted != 1 {
		t.Fatalf("promoted = %d, want 1", promoted)
	}
	if len(client.AddedEntities) != 1 {
		t.Fatalf("persisted %d entities, want 1", len(client.AddedEntities))
	}
	record := client.AddedEntities[0]
	if record.Type != domain.EntityTypeFact {
		t.Errorf("persisted type = %s, want fact", record.Type)
	}
	if len(client.AddedRelations) != 1 || client.AddedRelations[0].ToID != "prod_abc" {
		t.Errorf("fact should link to its entity refs: %+v", client.AddedRelations)
	}
	if n, _ := findings.Count(ctx); n != 0 {
		t.Errorf("pending count = %d after promotion, want 0", n)
	}
}

func TestProcessPendingToleratesPersistFailure(t *testing.T) {
	svc, findings, client := newFeedbackFixture()
	ctx := context.Background()

	svc.AddFinding(ctx, "will fail to persist", "doc-1", 0.9, "q", nil)
	svc.AddFinding(ctx, "will fail to persist", "doc-2", 0.9, "q", nil)

	client.AddEntityError = errors.New("memory down")
	if promoted := svc.ProcessPending(ctx); promoted != 0 {
		t.Fatalf("promoted = %d with memory down, want 0", promoted)
	}
	if n, _ := findings.Count(ctx); n != 1 {
		t.Fatalf("failed finding must stay pending, count = %d", n)
	}

	// Next flush succeeds once the backend recovers.
	client.AddEntityError = nil
	if promoted := svc.ProcessPending(ctx); promoted != 1 {
		t.Errorf("promoted = %d after recovery, want 1", promoted)
	}
}

func TestConcurrentObservationsAllCounted(t *testing.T) {
	svc, findings, _ := newFeedbackFixture()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			svc.AddFinding(ctx, "concurrent finding", "doc", 0.9, "q", nil)
		}()
	}
	wg.Wait()

	id := FindingID("concurrent finding", nil)
	f, ok := findings.Get(id)
	if !ok {
		t.Fatal("finding missing")
	}
	if f.VerificationCount != workers {
		t.Errorf("verification count = %d, want %d (no lost increments)", f.VerificationCount, workers)
	}
}

func TestFindingIDSortsEntityRefs(t *testing.T) {
	a := FindingID("same content", []domain.EntityRef{
		{ID: "prod_a", Type: domain.EntityTypeProduct},
		{ID: "risk_b", Type: domain.EntityTypeRisk},
	})
	b := FindingID("Same Content  ", []domain.EntityRef{
		{ID: "risk_b", Type: domain.EntityTypeRisk},
		{ID: "prod_a", Type: domain.EntityTypeProduct},
	})
	if a != b {
		t.Errorf("ref order and casing must not change the id: %s vs %s", a, b)
	}

	c := FindingID("same content", nil)
	if a == c {
		t.Error("different entity refs must change the id")
	}
}
