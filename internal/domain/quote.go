package domain

import "time"

// Market identifies the betting market a quote belongs to.
type Market string

const (
	Market1X2          Market = "1X2"
	MarketOverUnder    Market = "OVER_UNDER"
	MarketCorrectScore Market = "CORRECT_SCORE"
	MarketBTTS         Market = "BTTS"
)

// QuoteKind distinguishes exchange lay prices from bookmaker back prices.
type QuoteKind string

const (
	QuoteKindLay  QuoteKind = "LAY"
	QuoteKindBack QuoteKind = "BACK"
)

// OddsQuote is a single price observed at one venue. Immutable once created.
type OddsQuote struct {
	Site      string
	Market    Market
	Selection string // "Home", "Draw", "Away", "Over 2.5", ...
	Odds      float64
	Kind      QuoteKind
}

// Valid reports whether the quote carries a usable decimal price. Anything
// non-positive or above 999 is treated as scraper noise.
func (q OddsQuote) Valid() bool {
	return q.Odds > 0 && q.Odds <= 999
}

// MarketSnapshot is one match's quotes from one venue in one scan cycle.
// MatchID is the normalized league|date|home|away key, stable across venues
// and cycles even when the source spells team names differently.
type MarketSnapshot struct {
	MatchID    string
	MatchName  string // "Arsenal vs Chelsea"
	League     string
	KickoffUTC *time.Time
	Quotes     []OddsQuote
}

// MergeSnapshots groups snapshots by match ID, concatenating quote lists when
// the same match appears more than once (e.g. from separate fetch passes).
// Quote lists are appended, never overwritten. First-seen order is preserved.
func MergeSnapshots(snapshots []MarketSnapshot) []MarketSnapshot {
	byID := make(map[string]int, len(snapshots))
	merged := make([]MarketSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if i, ok := byID[s.MatchID]; ok {
			merged[i].Quotes = append(merged[i].Quotes, s.Quotes...)
			continue
		}
		byID[s.MatchID] = len(merged)
		merged = append(merged, s)
	}
	return merged
}
