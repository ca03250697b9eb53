// Package normalize canonicalizes free-text team and league names so that
// names from different venues can be compared: diacritics are stripped, casing
// and punctuation are collapsed, and known alternate spellings are mapped to a
// canonical form through an alias table.
package normalize

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer canonicalizes raw names. It is immutable after construction and
// safe for concurrent use.
type Normalizer struct {
	aliases map[string]string
}

// New creates a Normalizer with the given alias table. Keys must already be in
// normalized form (the output of Normalize without alias substitution); values
// are the canonical replacements. A nil map is allowed.
func New(aliases map[string]string) *Normalizer {
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &Normalizer{aliases: aliases}
}

// NewFromFile loads the alias table from a JSON file of
// {"normalized name": "canonical name"} entries. A missing or unreadable file
// degrades to an empty table rather than failing; a present-but-invalid file
// returns an error so a typo in config is not silently swallowed.
func NewFromFile(path string) (*Normalizer, error) {
	if path == "" {
		return New(nil), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return New(nil), nil
	}
	var aliases map[string]string
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("normalize: parse alias file %s: %w", path, err)
	}
	return New(aliases), nil
}

// stripMarks removes Unicode combining marks after NFKD decomposition, so
// "Beşiktaş" collapses to "besiktas".
var stripMarks = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
)

// Normalize canonicalizes a raw name: decompose and drop diacritics,
// lowercase, collapse every run of non-alphanumeric characters to a single
// space, trim, then apply the alias table on the full string. Empty input
// returns the empty string. Idempotent.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s, _, err := transform.String(stripMarks, raw)
	if err != nil {
		// Malformed UTF-8; fall back to the raw bytes.
		s = raw
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	out := strings.TrimSpace(b.String())

	if canonical, ok := n.aliases[out]; ok {
		return canonical
	}
	return out
}

// MatchID derives the stable cross-venue match key from the normalized
// league, ISO date, and team names. The same real-world match maps to the
// same key regardless of spelling variation at the source.
func (n *Normalizer) MatchID(league, dateISO, home, away string) string {
	return strings.Join([]string{
		n.Normalize(league),
		dateISO,
		n.Normalize(home),
		n.Normalize(away),
	}, "|")
}

// Aliases returns the size of the alias table, for startup logging.
func (n *Normalizer) Aliases() int {
	return len(n.aliases)
}
