package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/synapse/internal/service"
)

type IntentHandler struct {
	svc *service.IntentService
}

func NewIntentHandler(svc *service.IntentService) *IntentHandler {
	return &IntentHandler{svc: svc}
}

func (h *IntentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}
