// Package odds computes the gap between an exchange lay price and a bookmaker
// back price and decides whether it is worth alerting on.
package odds

import (
	"fmt"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// Policy selects the acceptance formula.
type Policy string

const (
	// PolicyBand accepts when the percentage difference falls inside an
	// inclusive [MinPct, MaxPct] band. Default.
	PolicyBand Policy = "band"
	// PolicyLayBack accepts when lay <= back, with optional absolute and
	// percentage minimum gaps. Alternate mode kept from an earlier
	// deployment of the system.
	PolicyLayBack Policy = "lay_back"
)

// Default acceptance band.
const (
	DefaultMinPct = -1.0
	DefaultMaxPct = 30.0
)

// maxOdds rejects unrealistically large decimal prices as scraper noise.
const maxOdds = 999.0

// Config holds the acceptance parameters for a Comparator.
type Config struct {
	Policy Policy
	// Band policy: inclusive percentage limits.
	MinPct float64
	MaxPct float64
	// LayBack policy: optional minimum gaps; zero disables each check.
	MinDiffAbs float64
	MinDiffPct float64
}

// Comparator evaluates lay/back price pairs. Pure computation, safe for
// concurrent use.
type Comparator struct {
	cfg Config
}

// New creates a Comparator. An unset policy defaults to PolicyBand with the
// default band limits.
func New(cfg Config) *Comparator {
	if cfg.Policy == "" {
		cfg.Policy = PolicyBand
	}
	if cfg.Policy == PolicyBand && cfg.MinPct == 0 && cfg.MaxPct == 0 {
		cfg.MinPct = DefaultMinPct
		cfg.MaxPct = DefaultMaxPct
	}
	return &Comparator{cfg: cfg}
}

// ComputeDifference returns the absolute and percentage difference between a
// lay and a back price: percentage = ((back - lay) / lay) * 100. Invalid
// inputs (either side <= 0 or > 999) yield (0, 0) rather than an error so a
// single bad quote never aborts a batch.
func (c *Comparator) ComputeDifference(layOdds, backOdds float64) (absolute, percentage float64) {
	if !validOdds(layOdds) || !validOdds(backOdds) {
		return 0, 0
	}
	absolute = backOdds - layOdds
	percentage = absolute / layOdds * 100
	return absolute, percentage
}

// IsAcceptable reports whether the pair clears the configured policy. Invalid
// odds are never acceptable.
func (c *Comparator) IsAcceptable(layOdds, backOdds float64) bool {
	if !validOdds(layOdds) || !validOdds(backOdds) {
		return false
	}

	switch c.cfg.Policy {
	case PolicyLayBack:
		if layOdds > backOdds {
			return false
		}
		abs, pct := c.ComputeDifference(layOdds, backOdds)
		if c.cfg.MinDiffAbs > 0 && abs < c.cfg.MinDiffAbs {
			return false
		}
		if c.cfg.MinDiffPct > 0 && pct < c.cfg.MinDiffPct {
			return false
		}
		return true
	default: // PolicyBand
		_, pct := c.ComputeDifference(layOdds, backOdds)
		return pct >= c.cfg.MinPct && pct <= c.cfg.MaxPct
	}
}

// FormatDifference renders the signed gap for display, e.g.
// "+0.2000 (+10.00%)".
func (c *Comparator) FormatDifference(layOdds, backOdds float64) string {
	abs, pct := c.ComputeDifference(layOdds, backOdds)
	return fmt.Sprintf("%+.4f (%+.2f%%)", abs, pct)
}

// Difference packages ComputeDifference into the domain value type.
func (c *Comparator) Difference(layOdds, backOdds float64) domain.OddsDifference {
	abs, pct := c.ComputeDifference(layOdds, backOdds)
	return domain.OddsDifference{Absolute: abs, Percentage: pct}
}

func validOdds(v float64) bool {
	return v > 0 && v <= maxOdds
}
