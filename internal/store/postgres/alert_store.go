package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// AlertLogStore implements domain.AlertLogStore using PostgreSQL.
type AlertLogStore struct {
	pool *pgxpool.Pool
}

// NewAlertLogStore creates an AlertLogStore backed by the given pool.
func NewAlertLogStore(pool *pgxpool.Pool) *AlertLogStore {
	return &AlertLogStore{pool: pool}
}

// Insert records one delivered alert.
func (s *AlertLogStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO alert_log (
			id, match_id, match_name, league, market_type, selection,
			orbit_lay_odds, comparison_odds, comparison_site,
			diff_abs, diff_pct, formatted_diff, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.MatchID, opp.MatchName, opp.League,
		string(opp.MarketType), opp.Selection,
		opp.OrbitLayOdds, opp.ComparisonOdds, opp.ComparisonSite,
		opp.OddsDifference.Absolute, opp.OddsDifference.Percentage,
		opp.FormattedDiff, opp.DetectionTime,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert alert %s: %w", opp.ID, err)
	}
	return nil
}

// ListRecent returns delivered alerts, newest first.
func (s *AlertLogStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.Opportunity, error) {
	const query = `
		SELECT id, match_id, match_name, league, market_type, selection,
		       orbit_lay_odds, comparison_odds, comparison_site,
		       diff_abs, diff_pct, formatted_diff, detected_at
		FROM alert_log
		ORDER BY detected_at DESC
		LIMIT $1 OFFSET $2`

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, query, limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list alerts: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		var marketType string
		if err := rows.Scan(
			&opp.ID, &opp.MatchID, &opp.MatchName, &opp.League, &marketType, &opp.Selection,
			&opp.OrbitLayOdds, &opp.ComparisonOdds, &opp.ComparisonSite,
			&opp.OddsDifference.Absolute, &opp.OddsDifference.Percentage,
			&opp.FormattedDiff, &opp.DetectionTime,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan alert: %w", err)
		}
		opp.MarketType = domain.Market(marketType)
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}

var _ domain.AlertLogStore = (*AlertLogStore)(nil)
