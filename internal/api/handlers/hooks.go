package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/clawsec/toolgate/internal/domain"
	"github.com/clawsec/toolgate/internal/service"
)

// HooksHandler exposes the gate's two hook entry points over HTTP for host
// runtimes that run the gate as a sidecar instead of in-process.
type HooksHandler struct {
	gate *service.Gate
}

func NewHooksHandler(gate *service.Gate) *HooksHandler {
	return &HooksHandler{gate: gate}
}

// ToolsResolved accepts a tools-resolved lifecycle event. The push upstream
// is best-effort; this endpoint never reports sync failures to the host.
func (h *HooksHandler) ToolsResolved(w http.ResponseWriter, r *http.Request) {
	var ev domain.ToolsResolvedEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.gate.ToolsResolved(r.Context(), &ev)
	w.WriteHeader(http.StatusNoContent)
}

// BeforeToolCall gates a pending tool invocation. Allowed calls answer
// 204; blocked calls answer 200 with the verdict payload.
func (h *HooksHandler) BeforeToolCall(w http.ResponseWriter, r *http.Request) {
	var ev domain.BeforeToolCallEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ev.ToolName == "" {
		writeError(w, http.StatusBadRequest, "toolName is required")
		return
	}

	verdict := h.gate.BeforeToolCall(r.Context(), &ev)
	if verdict == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}
