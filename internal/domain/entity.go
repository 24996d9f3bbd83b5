package domain

import "time"

type EntityType string

const (
	EntityTypeProduct    EntityType = "product"
	EntityTypeRisk       EntityType = "risk"
	EntityTypeDependency EntityType = "dependency"
	EntityTypeAction     EntityType = "action"
	EntityTypeOutcome    EntityType = "outcome"
)

// EntityTypeFact is the node type used when verified findings are written
// back to memory. Not a portfolio entity type.
const EntityTypeFact EntityType = "fact"

func ValidEntityType(t string) bool {
	switch EntityType(t) {
	case EntityTypeProduct, EntityTypeRisk, EntityTypeDependency, EntityTypeAction, EntityTypeOutcome:
		return true
	}
	return false
}

// IDPrefix returns the short code used when minting stable ids for this type.
// Unknown types fall through to the generic "entity_" prefix.
func (t EntityType) IDPrefix() string {
	switch t {
	case EntityTypeProduct:
		return "prod_"
	case EntityTypeRisk:
		return "risk_"
	case EntityTypeDependency:
		return "dep_"
	case EntityTypeAction:
		return "act_"
	case EntityTypeOutcome:
		return "out_"
	default:
		return "entity_"
	}
}

// EntityRef is an unverified pointer to a portfolio entity.
type EntityRef struct {
	ID   string     `json:"id"`
	Type EntityType `json:"type"`
}

// GroundedEntity is an EntityRef that has been validated against the
// memory backend, carrying a snapshot of the backend record.
type GroundedEntity struct {
	ID         string         `json:"id"`
	Type       EntityType     `json:"type"`
	Name       string         `json:"name,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Verified   bool           `json:"verified"`
	VerifiedAt time.Time      `json:"verified_at"`
}
