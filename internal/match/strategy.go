package match

// TeamMatchStrategy scores the similarity of two team names on a 0..100
// scale. The production implementation is the token-overlap heuristic in this
// package; alternative strategies (e.g. an LLM-backed comparison) can plug in
// behind the same interface.
type TeamMatchStrategy interface {
	Similarity(a, b string) float64
}

var _ TeamMatchStrategy = (*Matcher)(nil)
