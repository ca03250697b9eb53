// Package match pairs team names across two venues. Scoring is a deliberately
// simple, explainable heuristic: normalized-equal names score 100, everything
// else scores by token Jaccard overlap, which tolerates word reordering and
// partial overlap ("AC Milan" vs "Milan") without an external fuzzy-matching
// dependency.
package match

import (
	"context"
	"log/slog"
	"strings"

	"github.com/orbitarb/orbitarb/internal/normalize"
)

// DefaultThreshold is the minimum similarity score for MatchAll to accept a
// pairing.
const DefaultThreshold = 75.0

// Matcher scores and pairs team names. Safe for concurrent use.
type Matcher struct {
	norm      *normalize.Normalizer
	threshold float64
	logger    *slog.Logger
}

// New creates a Matcher with the given normalizer and acceptance threshold.
// A threshold <= 0 falls back to DefaultThreshold.
func New(norm *normalize.Normalizer, threshold float64, logger *slog.Logger) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		norm:      norm,
		threshold: threshold,
		logger:    logger.With(slog.String("component", "matcher")),
	}
}

// Similarity returns a score in [0, 100] for two raw names. Both are
// normalized first; identical normalized strings score 100, otherwise the
// score is 100 x |token intersection| / |token union|. Symmetric.
func (m *Matcher) Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	na := m.norm.Normalize(a)
	nb := m.norm.Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	tokensA := tokenSet(na)
	tokensB := tokenSet(nb)

	intersection := 0
	for t := range tokensA {
		if tokensB[t] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union) * 100
}

// FindBestMatch scans candidates linearly and returns the highest-scoring one
// with its score. Ties keep the first-seen maximum; callers should not rely
// on tie order. An empty candidate list returns ("", 0).
func (m *Matcher) FindBestMatch(target string, candidates []string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if score := m.Similarity(target, c); score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best, bestScore
}

// MatchAll maps each target name to its best candidate, keeping only pairings
// at or above the threshold. O(targets x candidates); cycle-sized inputs are
// tens of entries, so a linear scan is fine. Revisit if candidate counts ever
// reach the thousands.
func (m *Matcher) MatchAll(ctx context.Context, targets, candidates []string) map[string]string {
	matches := make(map[string]string, len(targets))
	for _, target := range targets {
		if target == "" {
			continue
		}
		best, score := m.FindBestMatch(target, candidates)
		if score >= m.threshold {
			matches[target] = best
			m.logger.DebugContext(ctx, "team matched",
				slog.String("target", target),
				slog.String("candidate", best),
				slog.Float64("score", score),
			)
		} else {
			m.logger.DebugContext(ctx, "no match above threshold",
				slog.String("target", target),
				slog.Float64("best_score", score),
			)
		}
	}
	return matches
}

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

var _ TeamMatchStrategy = (*Matcher)(nil)
