package handler

import (
	"log/slog"
	"net/http"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// OpportunityHandler serves the alert history endpoints.
type OpportunityHandler struct {
	alerts domain.AlertLogStore // optional; when nil, endpoints return 501
	logger *slog.Logger
}

// NewOpportunityHandler creates an OpportunityHandler with the given store.
func NewOpportunityHandler(alerts domain.AlertLogStore, logger *slog.Logger) *OpportunityHandler {
	return &OpportunityHandler{alerts: alerts, logger: logger}
}

// listOpportunitiesResponse wraps the recent opportunities response.
type listOpportunitiesResponse struct {
	Opportunities []domain.Opportunity `json:"opportunities"`
}

// ListRecent returns the most recently detected opportunities, newest first.
// GET /api/opportunities/recent?limit=20
func (h *OpportunityHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	if h.alerts == nil {
		writeError(w, http.StatusNotImplemented, "alert history not configured")
		return
	}

	limit := queryInt(r, "limit", 20)
	if limit == 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	opps, err := h.alerts.ListRecent(r.Context(), domain.ListOpts{Limit: limit})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}

	if opps == nil {
		opps = []domain.Opportunity{}
	}

	writeJSON(w, http.StatusOK, listOpportunitiesResponse{Opportunities: opps})
}
