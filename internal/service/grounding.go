package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"github.com/Harshitk-cp/synapse/internal/memory"
	"go.uber.org/zap"
)

const (
	entityCacheTTL     = 5 * time.Minute
	entityCacheMaxSize = 1000
	stableIDHexLen     = 12
)

// GenerateStableID mints a deterministic, content-addressed entity id.
// The natural key is normalized (lowercase, trimmed) before hashing, so
// any casing or surrounding whitespace yields the same id.
func GenerateStableID(entityType domain.EntityType, naturalKey string) string {
	normalized := strings.ToLower(strings.TrimSpace(naturalKey))
	sum := sha256.Sum256([]byte(string(entityType) + ":" + normalized))
	return entityType.IDPrefix() + hex.EncodeToString(sum[:])[:stableIDHexLen]
}

// ValidationResult is the outcome of validating one entity reference.
// Message is human-readable and empty when there is nothing to report.
type ValidationResult struct {
	Valid   bool
	Data    map[string]any
	Name    string
	Message string
}

// GroundingService resolves entity names to stable ids and verifies
// references against the memory backend, caching definitive results.
type GroundingService struct {
	memory domain.MemoryClient
	cache  *ttlCache
	logger *zap.Logger
}

func NewGroundingService(client domain.MemoryClient, logger *zap.Logger) *GroundingService {
	return &GroundingService{
		memory: client,
		cache:  newTTLCache(entityCacheTTL, entityCacheMaxSize),
		logger: logger,
	}
}

// ValidateEntity checks that id exists in memory with the expected type.
// A type mismatch is a distinct failure from not-found. With allowMissing,
// a missing entity is not reported as an error but is still invalid.
// Definitive results (found, type mismatch) are cached for 5 minutes;
// transient backend errors and not-found are not cached.
func (s *GroundingService) ValidateEntity(ctx context.Context, id string, entityType domain.EntityType, allowMissing bool) ValidationResult {
	cacheKey := string(entityType) + ":" + id
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(ValidationResult)
	}

	record, err := s.memory.GetEntity(ctx, id)
	if err != nil {
		if errors.Is(err, memory.ErrEntityNotFound) {
			result := ValidationResult{Valid: false}
			if !allowMissing {
				result.Message = fmt.Sprintf("entity %s not found", id)
			}
			return result
		}
		s.logger.Warn("entity validation backend error", zap.String("entity_id", id), zap.Error(err))
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("could not validate entity %s: backend unavailable", id),
		}
	}

	result := ValidationResult{}
	if record.Type != entityType {
		result.Message = fmt.Sprintf("entity %s has type %s, expected %s", id, record.Type, entityType)
	} else {
		result.Valid = true
		result.Data = record.Attributes
		result.Name = record.Name
	}

	s.cache.Set(cacheKey, result)
	return result
}

// ResolveEntity computes the stable id for a name and returns it only if
// an entity with that id and type exists in memory.
func (s *GroundingService) ResolveEntity(ctx context.Context, name string, entityType domain.EntityType) (string, bool) {
	id := GenerateStableID(entityType, name)
	result := s.ValidateEntity(ctx, id, entityType, true)
	if !result.Valid {
		return "", false
	}
	return id, true
}

// GroundEntities validates each reference independently, continuing past
// individual failures. Returns the verified entities and human-readable
// error messages for the rest.
func (s *GroundingService) GroundEntities(ctx context.Context, refs []domain.EntityRef) ([]domain.GroundedEntity, []string) {
	var grounded []domain.GroundedEntity
	var errs []string

	for _, ref := range refs {
		result := s.ValidateEntity(ctx, ref.ID, ref.Type, false)
		if !result.Valid {
			if result.Message != "" {
				errs = append(errs, result.Message)
			}
			continue
		}
		grounded = append(grounded, domain.GroundedEntity{
			ID:         ref.ID,
			Type:       ref.Type,
			Name:       result.Name,
			Data:       result.Data,
			Verified:   true,
			VerifiedAt: time.Now().UTC(),
		})
	}
	return grounded, errs
}

// ClearCache drops all cached validations. For tests and bulk updates.
func (s *GroundingService) ClearCache() {
	s.cache.Clear()
}
