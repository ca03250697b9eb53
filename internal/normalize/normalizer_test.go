package normalize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize(t *testing.T) {
	n := New(nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"lowercase passthrough", "arsenal", "arsenal"},
		{"uppercase", "ARSENAL", "arsenal"},
		{"mixed case and spaces", "Manchester United", "manchester united"},
		{"punctuation collapsed", "West-Ham   United!", "west ham united"},
		{"leading and trailing junk", "  FC Porto.  ", "fc porto"},
		{"diacritics stripped", "Beşiktaş", "besiktas"},
		{"accented vowels", "Málaga CF", "malaga cf"},
		{"digits kept", "Schalke 04", "schalke 04"},
		{"consecutive separators", "Inter -- Milan", "inter milan"},
		{"only punctuation", "***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(nil)
	inputs := []string{"Beşiktaş", "West-Ham United", "  FC Porto.  ", "Schalke 04"}
	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeAliases(t *testing.T) {
	n := New(map[string]string{
		"man utd": "manchester united",
	})

	if got := n.Normalize("Man Utd"); got != "manchester united" {
		t.Errorf("alias lookup: got %q, want %q", got, "manchester united")
	}
	// Non-aliased names are untouched.
	if got := n.Normalize("Man City"); got != "man city" {
		t.Errorf("non-aliased name: got %q, want %q", got, "man city")
	}
}

func TestMatchID(t *testing.T) {
	n := New(nil)

	got := n.MatchID("Premier League", "2026-09-01", "Arsenal", "Chelsea")
	want := "premier league|2026-09-01|arsenal|chelsea"
	if got != want {
		t.Errorf("MatchID = %q, want %q", got, want)
	}

	// Spelling variants of the same fixture yield the same key.
	other := n.MatchID("PREMIER  LEAGUE", "2026-09-01", "Arsenal.", "CHELSEA")
	if other != got {
		t.Errorf("MatchID variant = %q, want %q", other, got)
	}
}

func TestNewFromFile(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		n, err := NewFromFile("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Aliases() != 0 {
			t.Errorf("Aliases() = %d, want 0", n.Aliases())
		}
	})

	t.Run("missing file degrades to empty table", func(t *testing.T) {
		n, err := NewFromFile(filepath.Join(t.TempDir(), "nope.json"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Aliases() != 0 {
			t.Errorf("Aliases() = %d, want 0", n.Aliases())
		}
	})

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.json")
		if err := os.WriteFile(path, []byte(`{"man utd": "manchester united"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		n, err := NewFromFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Aliases() != 1 {
			t.Errorf("Aliases() = %d, want 1", n.Aliases())
		}
		if got := n.Normalize("Man Utd"); got != "manchester united" {
			t.Errorf("alias from file: got %q", got)
		}
	})

	t.Run("invalid json is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "aliases.json")
		if err := os.WriteFile(path, []byte(`{broken`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewFromFile(path); err == nil {
			t.Fatal("expected error for invalid JSON, got nil")
		}
	})
}
