package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPJSONSourceFetch(t *testing.T) {
	const bareArray = `[
		{"home": "Arsenal", "away": "Chelsea", "league": "EPL", "date": "2026-09-01", "selections": {"1": "2.00"}}
	]`
	const enveloped = `{"records": [
		{"home": "Leeds", "away": "Everton", "league": "EPL", "date": "2026-09-01", "selections": {"1": "3.10"}}
	]}`

	tests := []struct {
		name     string
		body     string
		wantHome string
	}{
		{"bare array", bareArray, "Arsenal"},
		{"envelope", enveloped, "Leeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.Header.Get("Accept"); got != "application/json" {
					t.Errorf("Accept header = %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			s := NewHTTPJSONSource("orbit", srv.URL, 5*time.Second)
			records, err := s.Fetch(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("got %d records, want 1", len(records))
			}
			if records[0].Home != tt.wantHome {
				t.Errorf("Home = %q, want %q", records[0].Home, tt.wantHome)
			}
		})
	}
}

func TestHTTPJSONSourceFetchErrors(t *testing.T) {
	t.Run("server error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		s := NewHTTPJSONSource("orbit", srv.URL, 5*time.Second)
		if _, err := s.Fetch(context.Background()); err == nil {
			t.Fatal("expected error for 500 response")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{broken`))
		}))
		defer srv.Close()

		s := NewHTTPJSONSource("orbit", srv.URL, 5*time.Second)
		if _, err := s.Fetch(context.Background()); err == nil {
			t.Fatal("expected error for malformed JSON")
		}
	})
}

func TestStaticSourceReturnsCopy(t *testing.T) {
	s := NewStaticSource("orbit", DemoLayRecords())

	first, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	first[0].Home = "mutated"

	second, err := s.Fetch(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Home != "Arsenal" {
		t.Errorf("fetch result should be isolated from caller mutation, got %q", second[0].Home)
	}
}
