package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/synapse/internal/service"
)

type QueryHandler struct {
	orch *service.Orchestrator
}

func NewQueryHandler(orch *service.Orchestrator) *QueryHandler {
	return &QueryHandler{orch: orch}
}

type queryRequest struct {
	Query   string         `json:"query"`
	Context map[string]any `json:"context,omitempty"`
}

// Query answers one query synchronously. The response body is the full
// unified envelope either way; the status code distinguishes a produced
// answer from a total backend failure.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	resp := h.orch.Orchestrate(r.Context(), req.Query, req.Context)

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

// Stream answers one query over SSE. Events arrive in execution order:
// intent first, complete last, with the full envelope in the complete
// event's place via a final response event.
func (h *QueryHandler) Stream(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	resp := h.orch.OrchestrateStream(r.Context(), query, nil, func(e service.Event) {
		writeSSE(w, string(e.Type), e.Payload)
		flusher.Flush()
	})

	// The complete event carries only a summary; ship the full envelope
	// as a final response event for clients that want one payload.
	writeSSE(w, "response", resp)
	flusher.Flush()
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte("{}")
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
