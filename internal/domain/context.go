package domain

// SharedContext is the mutable, query-scoped aggregate built incrementally
// during one orchestration call. It is owned exclusively by that call and
// discarded at response time; only a redacted projection reaches the client.
type SharedContext struct {
	EntityRefs        []EntityRef
	GroundedEntities  []GroundedEntity
	HistoricalContext string
	PriorDecisions    []map[string]any
	ValidationErrors  []string
	PendingFindings   []Finding
}

// ContextProjection is the client-visible view of a SharedContext.
// Raw grounded-entity payloads are excluded.
type ContextProjection struct {
	EntityRefs        []EntityRef `json:"entity_refs,omitempty"`
	GroundedIDs       []string    `json:"grounded_ids,omitempty"`
	HistoricalContext string      `json:"historical_context,omitempty"`
	ValidationErrors  []string    `json:"validation_errors,omitempty"`
	PendingFindings   int         `json:"pending_findings"`
}

func (c *SharedContext) Projection() *ContextProjection {
	p := &ContextProjection{
		EntityRefs:        c.EntityRefs,
		HistoricalContext: c.HistoricalContext,
		ValidationErrors:  c.ValidationErrors,
		PendingFindings:   len(c.PendingFindings),
	}
	for _, g := range c.GroundedEntities {
		if g.Verified {
			p.GroundedIDs = append(p.GroundedIDs, g.ID)
		}
	}
	return p
}

// FirstGroundedProduct returns the first verified entity of type product,
// used to scope retrieval queries. Nil when none is grounded.
func (c *SharedContext) FirstGroundedProduct() *GroundedEntity {
	for i := range c.GroundedEntities {
		g := &c.GroundedEntities[i]
		if g.Verified && g.Type == EntityTypeProduct {
			return g
		}
	}
	return nil
}
