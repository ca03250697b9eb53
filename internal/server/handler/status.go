package handler

import (
	"log/slog"
	"net/http"

	"github.com/orbitarb/orbitarb/internal/pipeline"
)

// ScannerStatus exposes the scanner's progress snapshot.
type ScannerStatus interface {
	Snapshot() pipeline.Status
}

// StatusHandler serves the runtime status endpoint.
type StatusHandler struct {
	scanner ScannerStatus // optional; when nil the scanner section is omitted
	mode    string
	logger  *slog.Logger
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(scanner ScannerStatus, mode string, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{scanner: scanner, mode: mode, logger: logger}
}

// GetStatus returns the operating mode and, when a scanner is running, its
// cycle statistics.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"mode": h.mode,
	}
	if h.scanner != nil {
		resp["scanner"] = h.scanner.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}
