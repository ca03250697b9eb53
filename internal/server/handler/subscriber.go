package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// SubscriberHandler serves the subscriber registry endpoints.
type SubscriberHandler struct {
	store  domain.SubscriberStore
	logger *slog.Logger
}

// NewSubscriberHandler creates a SubscriberHandler with the given store.
func NewSubscriberHandler(store domain.SubscriberStore, logger *slog.Logger) *SubscriberHandler {
	return &SubscriberHandler{store: store, logger: logger}
}

// registerRequest is the body for subscriber registration.
type registerRequest struct {
	ChatID    string `json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

// listSubscribersResponse wraps the subscriber list response.
type listSubscribersResponse struct {
	Subscribers []domain.Subscriber `json:"subscribers"`
	Total       int                 `json:"total"`
}

// Register adds a new notification subscriber.
// POST /api/subscribers
func (h *SubscriberHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ChatID) == "" {
		writeError(w, http.StatusBadRequest, "chat_id is required")
		return
	}

	sub := domain.Subscriber{
		ChatID:       strings.TrimSpace(req.ChatID),
		Username:     req.Username,
		FirstName:    req.FirstName,
		RegisteredAt: time.Now().UTC(),
	}
	if err := h.store.Register(r.Context(), sub); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			writeError(w, http.StatusConflict, "subscriber already registered")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: register subscriber failed",
			slog.String("chat_id", sub.ChatID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to register subscriber")
		return
	}

	writeJSON(w, http.StatusCreated, sub)
}

// Unregister removes a subscriber.
// DELETE /api/subscribers/{chat_id}
func (h *SubscriberHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("chat_id")
	if chatID == "" {
		writeError(w, http.StatusBadRequest, "missing chat_id")
		return
	}

	if err := h.store.Unregister(r.Context(), chatID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscriber not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: unregister subscriber failed",
			slog.String("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to unregister subscriber")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List returns registered subscribers with standard pagination.
// GET /api/subscribers?limit=50&offset=0
func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	subs, err := h.store.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list subscribers failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	total := len(subs)
	subs = paginate(subs, opts)

	if subs == nil {
		subs = []domain.Subscriber{}
	}

	writeJSON(w, http.StatusOK, listSubscribersResponse{Subscribers: subs, Total: total})
}

// paginate applies offset/limit to an already sorted slice.
func paginate(subs []domain.Subscriber, opts domain.ListOpts) []domain.Subscriber {
	if opts.Offset >= len(subs) {
		return nil
	}
	subs = subs[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(subs) {
		subs = subs[:opts.Limit]
	}
	return subs
}
