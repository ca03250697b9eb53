package domain

import "testing"

func TestOddsQuoteValid(t *testing.T) {
	tests := []struct {
		name string
		odds float64
		want bool
	}{
		{"typical price", 2.05, true},
		{"minimum tick", 1.01, true},
		{"cap", 999, true},
		{"zero", 0, false},
		{"negative", -2, false},
		{"above cap", 999.01, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := OddsQuote{Odds: tt.odds}
			if got := q.Valid(); got != tt.want {
				t.Errorf("Valid() with odds %v = %v, want %v", tt.odds, got, tt.want)
			}
		})
	}
}

func TestMergeSnapshots(t *testing.T) {
	in := []MarketSnapshot{
		{MatchID: "a", Quotes: []OddsQuote{{Site: "orbit", Odds: 2.0}}},
		{MatchID: "b", Quotes: []OddsQuote{{Site: "orbit", Odds: 3.0}}},
		{MatchID: "a", Quotes: []OddsQuote{{Site: "oddsportal", Odds: 2.1}}},
	}

	got := MergeSnapshots(in)
	if len(got) != 2 {
		t.Fatalf("got %d snapshots, want 2", len(got))
	}

	// First-seen order is preserved.
	if got[0].MatchID != "a" || got[1].MatchID != "b" {
		t.Errorf("order = %q, %q", got[0].MatchID, got[1].MatchID)
	}

	// Quotes for the duplicate match are concatenated, not overwritten.
	if len(got[0].Quotes) != 2 {
		t.Fatalf("match a has %d quotes, want 2", len(got[0].Quotes))
	}
	if got[0].Quotes[0].Site != "orbit" || got[0].Quotes[1].Site != "oddsportal" {
		t.Errorf("quote order = %q, %q", got[0].Quotes[0].Site, got[0].Quotes[1].Site)
	}
}

func TestMergeSnapshotsEmpty(t *testing.T) {
	if got := MergeSnapshots(nil); len(got) != 0 {
		t.Errorf("got %d snapshots, want 0", len(got))
	}
}

func TestRawMatchRecordMatchName(t *testing.T) {
	r := RawMatchRecord{Home: "Arsenal", Away: "Chelsea"}
	if got := r.MatchName(); got != "Arsenal vs Chelsea" {
		t.Errorf("MatchName() = %q", got)
	}
}

func TestOpportunityDedupeKey(t *testing.T) {
	o := Opportunity{MatchID: "m1", MarketType: Market1X2, Selection: "Home"}
	matchID, market, selection := o.DedupeKey()
	if matchID != "m1" || market != Market1X2 || selection != "Home" {
		t.Errorf("DedupeKey() = %q, %q, %q", matchID, market, selection)
	}
}
