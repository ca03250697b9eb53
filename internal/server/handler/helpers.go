package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/orbitarb/orbitarb/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// writeJSON streams v to the response as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

// writeError sends a JSON error body of the form {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// queryInt reads a non-negative integer query parameter, returning fallback
// when the parameter is absent or unparseable.
func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// parseListOpts extracts pagination parameters from the query string, with
// limit defaulting to 50 and capped at 500.
func parseListOpts(r *http.Request) domain.ListOpts {
	limit := queryInt(r, "limit", defaultPageSize)
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return domain.ListOpts{
		Limit:  limit,
		Offset: queryInt(r, "offset", 0),
	}
}
