package source

import (
	"context"
	"time"

	"github.com/orbitarb/orbitarb/internal/domain"
)

// StaticSource returns a fixed set of records on every fetch. Used for demo
// mode and tests.
type StaticSource struct {
	site    string
	records []domain.RawMatchRecord
}

// NewStaticSource creates a source that always returns the given records.
func NewStaticSource(site string, records []domain.RawMatchRecord) *StaticSource {
	return &StaticSource{site: site, records: records}
}

// Site returns the venue name.
func (s *StaticSource) Site() string {
	return s.site
}

// Fetch returns a copy of the fixed records.
func (s *StaticSource) Fetch(_ context.Context) ([]domain.RawMatchRecord, error) {
	out := make([]domain.RawMatchRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// DemoLayRecords is a fixture exchange snapshot whose odds sit slightly below
// DemoBackRecords so a demo run produces one alert.
func DemoLayRecords() []domain.RawMatchRecord {
	return demoRecords("2.00")
}

// DemoBackRecords is the matching bookmaker fixture.
func DemoBackRecords() []domain.RawMatchRecord {
	return demoRecords("2.12")
}

func demoRecords(homeOdds string) []domain.RawMatchRecord {
	return []domain.RawMatchRecord{
		{
			Home:   "Arsenal",
			Away:   "Chelsea",
			League: "EPL",
			Date:   time.Now().UTC().Format("2006-01-02"),
			Selections: map[string]string{
				"1": homeOdds,
				"X": "3.60",
				"2": "3.45",
			},
		},
	}
}

var _ domain.SnapshotSource = (*StaticSource)(nil)
