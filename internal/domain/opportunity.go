package domain

import "time"

// OddsDifference is the gap between a lay and a back price for one selection.
type OddsDifference struct {
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

// Opportunity is one detected cross-venue arbitrage candidate. Immutable;
// consumed by the notifier and optionally recorded in the alert log.
type Opportunity struct {
	ID              string         `json:"id"`
	MatchID         string         `json:"match_id"`
	MatchName       string         `json:"match_name"`
	League          string         `json:"league,omitempty"`
	MarketType      Market         `json:"market_type"`
	Selection       string         `json:"selection"`
	OrbitLayOdds    float64        `json:"orbit_lay_odds"`
	ComparisonOdds  float64        `json:"comparison_odds"`
	ComparisonSite  string         `json:"comparison_site"`
	OddsDifference  OddsDifference `json:"odds_difference"`
	FormattedDiff   string         `json:"formatted_diff"`
	DetectionTime   time.Time      `json:"detection_time"`
}

// DedupeKey returns the cache key that suppresses repeat alerts for the same
// match/market/selection within the cooldown window.
func (o Opportunity) DedupeKey() (matchID string, market Market, selection string) {
	return o.MatchID, o.MarketType, o.Selection
}
