package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"go.uber.org/zap"
)

const (
	findingIDHexLen      = 16
	defaultFlushInterval = 5 * time.Minute
	flushTimeout         = 30 * time.Second
)

// FindingID derives the content-addressed id for a finding: a hash over
// the normalized content plus the sorted entity references.
func FindingID(content string, refs []domain.EntityRef) string {
	normalized := strings.ToLower(strings.TrimSpace(content))

	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, string(ref.Type)+":"+ref.ID)
	}
	sort.Strings(keys)

	sum := sha256.Sum256([]byte(normalized + "|" + strings.Join(keys, ",")))
	return "find_" + hex.EncodeToString(sum[:])[:findingIDHexLen]
}

// FeedbackService accumulates retrieval findings and promotes corroborated
// ones to verified facts in memory. Deduplication and verification counting
// are delegated to the store, which must make them atomic.
type FeedbackService struct {
	store  domain.FindingStore
	memory domain.MemoryClient
	logger *zap.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewFeedbackService(store domain.FindingStore, client domain.MemoryClient, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		store:    store,
		memory:   client,
		logger:   logger,
		interval: defaultFlushInterval,
		stopCh:   make(chan struct{}),
	}
}

func (s *FeedbackService) SetFlushInterval(d time.Duration) {
	s.interval = d
}

// AddFinding records one observation of a candidate fact. Findings below
// the confidence threshold are rejected. Returns the finding id and
// whether the observation was accepted.
func (s *FeedbackService) AddFinding(ctx context.Context, content, source string, confidence float64, queryContext string, refs []domain.EntityRef) (string, bool) {
	if confidence < domain.FindingConfidenceThreshold {
		return "", false
	}
	if strings.TrimSpace(content) == "" {
		return "", false
	}

	now := time.Now().UTC()
	finding := &domain.Finding{
		ID:                FindingID(content, refs),
		Content:           content,
		Source:            source,
		Confidence:        confidence,
		Timestamp:         now,
		QueryContext:      queryContext,
		EntityReferences:  refs,
		VerificationCount: 1,
		FirstSeen:         now,
		LastSeen:          now,
	}

	stored, err := s.store.Observe(ctx, finding)
	if err != nil {
		s.logger.Warn("failed to record finding", zap.String("finding_id", finding.ID), zap.Error(err))
		return "", false
	}

	s.logger.Debug("finding observed",
		zap.String("finding_id", stored.ID),
		zap.Int("verification_count", stored.VerificationCount),
		zap.Bool("verified", stored.Verified))
	return stored.ID, true
}

// ProcessPending persists every verified, high-confidence finding to
// memory as a fact node and removes it from the pending set. A persistence
// failure for one finding never aborts the batch.
func (s *FeedbackService) ProcessPending(ctx context.Context) int {
	promotable, err := s.store.ListPromotable(ctx)
	if err != nil {
		s.logger.Warn("failed to list promotable findings", zap.Error(err))
		return 0
	}

	promoted := 0
	for _, f := range promotable {
		if err := s.persistFinding(ctx, &f); err != nil {
			s.logger.Warn("failed to persist finding, will retry",
				zap.String("finding_id", f.ID), zap.Error(err))
			continue
		}
		if err := s.store.Delete(ctx, f.ID); err != nil {
			s.logger.Warn("failed to remove promoted finding",
				zap.String("finding_id", f.ID), zap.Error(err))
			continue
		}
		promoted++
	}

	if promoted > 0 {
		s.logger.Info("promoted findings to memory", zap.Int("count", promoted))
	}
	return promoted
}

func (s *FeedbackService) persistFinding(ctx context.Context, f *domain.Finding) error {
	record := &domain.EntityRecord{
		ID:   f.ID,
		Type: domain.EntityTypeFact,
		Name: f.Content,
		Attributes: map[string]any{
			"content":            f.Content,
			"source":             f.Source,
			"confidence":         f.Confidence,
			"query_context":      f.QueryContext,
			"verification_count": f.VerificationCount,
			"first_seen":         f.FirstSeen.Format(time.RFC3339),
			"last_seen":          f.LastSeen.Format(time.RFC3339),
		},
	}
	if err := s.memory.AddEntity(ctx, record); err != nil {
		return fmt.Errorf("add fact entity: %w", err)
	}

	// Link the fact to the entities it mentions. Edge failures are
	// tolerated; the fact node itself is already durable.
	for _, ref := range f.EntityReferences {
		rel := &domain.Relationship{
			FromID: f.ID,
			ToID:   ref.ID,
			Type:   "mentions",
			Weight: f.Confidence,
		}
		if err := s.memory.AddRelationship(ctx, rel); err != nil {
			s.logger.Debug("failed to link fact to entity",
				zap.String("finding_id", f.ID),
				zap.String("entity_id", ref.ID),
				zap.Error(err))
		}
	}
	return nil
}

// PendingCount returns the size of the pending-findings set.
func (s *FeedbackService) PendingCount(ctx context.Context) int {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0
	}
	return n
}

// Start runs the flusher on a periodic schedule in a background goroutine,
// retrying findings whose persistence previously failed.
func (s *FeedbackService) Start() {
	if s.interval <= 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("feedback flusher started", zap.Duration("interval", s.interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
				s.ProcessPending(ctx)
				cancel()
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Stop halts the background flusher and waits for it to exit.
func (s *FeedbackService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("feedback flusher stopped")
}
