package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"github.com/Harshitk-cp/synapse/internal/service"
)

type EntityHandler struct {
	svc *service.GroundingService
}

func NewEntityHandler(svc *service.GroundingService) *EntityHandler {
	return &EntityHandler{svc: svc}
}

type resolveRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type resolveResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Exists bool   `json:"exists"`
}

// Resolve maps a natural entity name to its stable id and reports whether
// the entity currently exists in memory. The id is deterministic, so it is
// returned even when the entity is unknown.
func (h *EntityHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !domain.ValidEntityType(req.Type) {
		writeError(w, http.StatusBadRequest, "invalid entity type")
		return
	}

	entityType := domain.EntityType(req.Type)
	id, exists := h.svc.ResolveEntity(r.Context(), req.Name, entityType)
	if !exists {
		id = service.GenerateStableID(entityType, req.Name)
	}

	writeJSON(w, http.StatusOK, resolveResponse{
		ID:     id,
		Type:   req.Type,
		Exists: exists,
	})
}
