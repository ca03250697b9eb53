package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/orbitarb/orbitarb/internal/domain"
)

func sampleOpportunity(id string) domain.Opportunity {
	return domain.Opportunity{
		ID:             id,
		MatchID:        "epl|2026-09-01|arsenal|chelsea",
		MatchName:      "Arsenal vs Chelsea",
		League:         "EPL",
		MarketType:     domain.Market1X2,
		Selection:      "Home",
		OrbitLayOdds:   2.00,
		ComparisonOdds: 2.20,
		ComparisonSite: "oddsportal",
		OddsDifference: domain.OddsDifference{Absolute: 0.20, Percentage: 10.0},
		FormattedDiff:  "+0.2000 (+10.00%)",
		DetectionTime:  time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestFormatAlert(t *testing.T) {
	got := FormatAlert(sampleOpportunity("a"))

	wantLines := []string{
		"Match: Arsenal vs Chelsea",
		"League: EPL",
		"Market: 1X2 / Home",
		"Lay (Orbit): 2.00",
		"Back (oddsportal): 2.20",
		"Difference: +0.2000 (+10.00%)",
		"Detected: 2026-09-01T12:30:00Z",
	}
	for _, line := range wantLines {
		if !strings.Contains(got, line) {
			t.Errorf("alert missing line %q in:\n%s", line, got)
		}
	}
}

func TestFormatAlertOmitsEmptyLeague(t *testing.T) {
	o := sampleOpportunity("a")
	o.League = ""
	if strings.Contains(FormatAlert(o), "League:") {
		t.Error("empty league should be omitted")
	}
}

func TestFormatBatch(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		title, msg := FormatBatch([]domain.Opportunity{sampleOpportunity("a")})
		if title != "Arbitrage opportunity" {
			t.Errorf("title = %q", title)
		}
		if strings.Contains(msg, "----------") {
			t.Error("single alert should not contain a separator")
		}
	})

	t.Run("multiple", func(t *testing.T) {
		title, msg := FormatBatch([]domain.Opportunity{
			sampleOpportunity("a"),
			sampleOpportunity("b"),
			sampleOpportunity("c"),
		})
		if title != "3 arbitrage opportunities" {
			t.Errorf("title = %q", title)
		}
		if got := strings.Count(msg, "Match: Arsenal vs Chelsea"); got != 3 {
			t.Errorf("message contains %d alerts, want 3", got)
		}
		if got := strings.Count(msg, "----------"); got != 2 {
			t.Errorf("message contains %d separators, want 2", got)
		}
	})
}
