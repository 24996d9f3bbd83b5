package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/synapse/internal/service"
)

type FindingsHandler struct {
	svc *service.FeedbackService
}

func NewFindingsHandler(svc *service.FeedbackService) *FindingsHandler {
	return &FindingsHandler{svc: svc}
}

func (h *FindingsHandler) Pending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{
		"pending": h.svc.PendingCount(r.Context()),
	})
}

// Process triggers one promotion pass immediately, outside the background
// flush schedule.
func (h *FindingsHandler) Process(w http.ResponseWriter, r *http.Request) {
	promoted := h.svc.ProcessPending(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{
		"promoted": promoted,
		"pending":  h.svc.PendingCount(r.Context()),
	})
}
