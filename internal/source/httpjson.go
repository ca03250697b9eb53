// Package source provides venue data adapters. Browser automation lives in
// separate scraper processes; the adapters here consume their output (an HTTP
// JSON endpoint) or serve fixtures for demo runs. Everything downstream of an
// adapter works on domain.RawMatchRecord and never branches on venue shape.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// maxBodyBytes bounds how much of a feed response is read.
const maxBodyBytes = 8 << 20

// HTTPJSONSource fetches raw match records from a scraper's JSON endpoint.
// The endpoint returns either a bare array of records or an object with a
// "records" field.
type HTTPJSONSource struct {
	site       string
	url        string
	httpClient *http.Client
}

// NewHTTPJSONSource creates an adapter for the given site name and feed URL.
// timeout bounds each fetch; zero means 30 seconds.
func NewHTTPJSONSource(site, url string, timeout time.Duration) *HTTPJSONSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPJSONSource{
		site: site,
		url:  url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Site returns the venue name.
func (s *HTTPJSONSource) Site() string {
	return s.site
}

// feedEnvelope is the wrapped response shape some scrapers emit.
type feedEnvelope struct {
	Records []domain.RawMatchRecord `json:"records"`
}

// Fetch GETs the feed and decodes its records. A non-2xx status or a decode
// failure is an error; the caller treats fetch errors as "no data this cycle".
func (s *HTTPJSONSource) Fetch(ctx context.Context) ([]domain.RawMatchRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("source %s: create request: %w", s.site, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source %s: fetch: %w", s.site, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("source %s: unexpected status %d: %w", s.site, resp.StatusCode, domain.ErrDataUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("source %s: read body: %w", s.site, err)
	}

	var records []domain.RawMatchRecord
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	var envelope feedEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("source %s: decode records: %w", s.site, err)
	}
	return envelope.Records, nil
}

var _ domain.SnapshotSource = (*HTTPJSONSource)(nil)
