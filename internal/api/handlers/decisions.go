package handlers

import (
	"net/http"
	"strconv"

	"github.com/clawsec/toolgate/internal/store"
)

const defaultDecisionLimit = 50

// DecisionsHandler serves the audit log to operators.
type DecisionsHandler struct {
	decisions *store.DecisionStore
}

func NewDecisionsHandler(ds *store.DecisionStore) *DecisionsHandler {
	return &DecisionsHandler{decisions: ds}
}

func (h *DecisionsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.decisions == nil {
		writeError(w, http.StatusNotFound, "audit log not configured")
		return
	}

	limit := defaultDecisionLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	decisions, err := h.decisions.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decisions": decisions})
}
