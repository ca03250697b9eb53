package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// FormatAlert renders a single opportunity as a notification message.
func FormatAlert(o domain.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Match: %s\n", o.MatchName)
	if o.League != "" {
		fmt.Fprintf(&b, "League: %s\n", o.League)
	}
	fmt.Fprintf(&b, "Market: %s / %s\n", o.MarketType, o.Selection)
	fmt.Fprintf(&b, "Lay (Orbit): %.2f\n", o.OrbitLayOdds)
	fmt.Fprintf(&b, "Back (%s): %.2f\n", o.ComparisonSite, o.ComparisonOdds)
	fmt.Fprintf(&b, "Difference: %s\n", o.FormattedDiff)
	fmt.Fprintf(&b, "Detected: %s", o.DetectionTime.UTC().Format(time.RFC3339))
	return b.String()
}

// FormatNoOpportunities renders the status notice for a completed cycle that
// produced no fresh opportunities.
func FormatNoOpportunities() (title, message string) {
	return "No opportunities", "Scan complete. No arbitrage opportunities found."
}

// FormatDataIssue renders the status notice for a cycle that could not get
// usable data from both feeds.
func FormatDataIssue(layRecords, backRecords int) (title, message string) {
	return "Data collection issue", fmt.Sprintf(
		"Scan skipped. Lay feed returned %d records, back feed returned %d.",
		layRecords, backRecords,
	)
}

// FormatBatch renders a set of opportunities found in one scan cycle as a
// single message, separated by rules, so a cycle produces at most one
// notification per channel.
func FormatBatch(opps []domain.Opportunity) (title, message string) {
	if len(opps) == 1 {
		return "Arbitrage opportunity", FormatAlert(opps[0])
	}
	title = fmt.Sprintf("%d arbitrage opportunities", len(opps))
	parts := make([]string, 0, len(opps))
	for _, o := range opps {
		parts = append(parts, FormatAlert(o))
	}
	return title, strings.Join(parts, "\n----------\n")
}
