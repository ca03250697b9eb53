// Package arb contains the opportunity-detection pipeline: it flattens two
// venues' raw match records into market snapshots, pairs matches by fuzzy
// team-name comparison, and emits an Opportunity for every pairing whose
// lay/back gap clears the configured acceptance policy.
package arb

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orbitarb/orbitarb/internal/domain"
	"github.com/orbitarb/orbitarb/internal/match"
	"github.com/orbitarb/orbitarb/internal/normalize"
	"github.com/orbitarb/orbitarb/internal/odds"
)

// homeWinLabels are the selection labels accepted as the 1X2 home-win leg.
// Detection currently narrows to this single representative selection per
// match; extending to all three legs changes the match-key granularity to
// (match, market, selection) and is left as a config-driven extension.
var homeWinLabels = []string{"1", "Home"}

// Finder orchestrates Normalizer, Matcher, and Comparator over two venue
// snapshots.
type Finder struct {
	norm       *normalize.Normalizer
	matcher    *match.Matcher
	comparator *odds.Comparator
	laySite    string
	backSite   string
	logger     *slog.Logger
}

// NewFinder creates a Finder. laySite and backSite name the venues for the
// emitted opportunities (e.g. "orbit", "golbet724").
func NewFinder(
	norm *normalize.Normalizer,
	matcher *match.Matcher,
	comparator *odds.Comparator,
	laySite, backSite string,
	logger *slog.Logger,
) *Finder {
	return &Finder{
		norm:       norm,
		matcher:    matcher,
		comparator: comparator,
		laySite:    laySite,
		backSite:   backSite,
		logger:     logger.With(slog.String("component", "finder")),
	}
}

// Find detects opportunities between the lay venue's records and the back
// venue's records. Each side is flattened to one snapshot per record and
// merged by match ID, so a match that appears more than once (separate fetch
// passes, duplicated feed rows) carries all of its quotes into selection.
// Malformed records are skipped with a warning; an empty input on either side
// yields an empty result. Output order follows the lay side's first-seen
// record order, not edge size.
func (f *Finder) Find(ctx context.Context, layRecords, backRecords []domain.RawMatchRecord) []domain.Opportunity {
	laySnaps := domain.MergeSnapshots(f.flatten(ctx, layRecords, f.laySite, domain.QuoteKindLay))
	backSnaps := domain.MergeSnapshots(f.flatten(ctx, backRecords, f.backSite, domain.QuoteKindBack))
	if len(laySnaps) == 0 || len(backSnaps) == 0 {
		return nil
	}

	matched := f.matcher.MatchAll(ctx, snapshotNames(laySnaps), snapshotNames(backSnaps))
	if len(matched) == 0 {
		f.logger.DebugContext(ctx, "no team matches this cycle",
			slog.Int("lay_matches", len(laySnaps)),
			slog.Int("back_matches", len(backSnaps)),
		)
		return nil
	}

	backByName := make(map[string]domain.MarketSnapshot, len(backSnaps))
	for _, s := range backSnaps {
		if _, ok := backByName[s.MatchName]; !ok {
			backByName[s.MatchName] = s
		}
	}

	now := time.Now().UTC()
	var opportunities []domain.Opportunity
	for _, lay := range laySnaps {
		backName, ok := matched[lay.MatchName]
		if !ok {
			continue
		}
		back, ok := backByName[backName]
		if !ok {
			continue
		}
		layOdds, ok := bestHomeWin(lay)
		if !ok {
			continue
		}
		backOdds, ok := bestHomeWin(back)
		if !ok {
			continue
		}
		if !f.comparator.IsAcceptable(layOdds, backOdds) {
			continue
		}

		opp := domain.Opportunity{
			ID:             uuid.NewString(),
			MatchID:        lay.MatchID,
			MatchName:      lay.MatchName,
			League:         lay.League,
			MarketType:     domain.Market1X2,
			Selection:      "Home",
			OrbitLayOdds:   layOdds,
			ComparisonOdds: backOdds,
			ComparisonSite: f.backSite,
			OddsDifference: f.comparator.Difference(layOdds, backOdds),
			FormattedDiff:  f.comparator.FormatDifference(layOdds, backOdds),
			DetectionTime:  now,
		}
		opportunities = append(opportunities, opp)
		f.logger.InfoContext(ctx, "opportunity found",
			slog.String("match", opp.MatchName),
			slog.Float64("lay", opp.OrbitLayOdds),
			slog.Float64("back", opp.ComparisonOdds),
			slog.String("diff", opp.FormattedDiff),
		)
	}
	return opportunities
}

// flatten converts raw records to one single-quote snapshot each, keyed by
// the normalized match ID so MergeSnapshots can concatenate duplicates.
// Records missing a team name or a valid home-win price are dropped with a
// warning; they never abort the batch.
func (f *Finder) flatten(ctx context.Context, records []domain.RawMatchRecord, site string, kind domain.QuoteKind) []domain.MarketSnapshot {
	out := make([]domain.MarketSnapshot, 0, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.Home) == "" || strings.TrimSpace(r.Away) == "" {
			f.logger.WarnContext(ctx, "skipping record without team names")
			continue
		}
		price, ok := homeWinOdds(r.Selections)
		if !ok {
			f.logger.WarnContext(ctx, "skipping record without home-win odds",
				slog.String("match", r.MatchName()),
			)
			continue
		}
		quote := domain.OddsQuote{
			Site:      site,
			Market:    domain.Market1X2,
			Selection: "Home",
			Odds:      price,
			Kind:      kind,
		}
		if !quote.Valid() {
			f.logger.WarnContext(ctx, "skipping record with out-of-range odds",
				slog.String("match", r.MatchName()),
				slog.Float64("odds", price),
			)
			continue
		}
		out = append(out, domain.MarketSnapshot{
			MatchID:   f.norm.MatchID(r.League, r.Date, r.Home, r.Away),
			MatchName: r.MatchName(),
			League:    r.League,
			Quotes:    []domain.OddsQuote{quote},
		})
	}
	return out
}

// bestHomeWin picks the most favorable valid home-win quote from a merged
// snapshot: the lowest price for lay quotes, the highest for back quotes.
func bestHomeWin(s domain.MarketSnapshot) (float64, bool) {
	var best float64
	found := false
	for _, q := range s.Quotes {
		if q.Selection != "Home" || !q.Valid() {
			continue
		}
		switch {
		case !found:
			best = q.Odds
			found = true
		case q.Kind == domain.QuoteKindLay && q.Odds < best:
			best = q.Odds
		case q.Kind == domain.QuoteKindBack && q.Odds > best:
			best = q.Odds
		}
	}
	return best, found
}

func homeWinOdds(selections map[string]string) (float64, bool) {
	for _, label := range homeWinLabels {
		raw, ok := selections[label]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || v <= 0 {
			continue
		}
		return v, true
	}
	return 0, false
}

func snapshotNames(snaps []domain.MarketSnapshot) []string {
	out := make([]string, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s.MatchName)
	}
	return out
}
