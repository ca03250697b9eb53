package domain

// RawMatchRecord is the shape every source adapter produces: a home/away team
// pair plus the raw odds text keyed by selection label ("1", "X", "2",
// "Over 2.5", ...). Parsing of site-specific payloads happens inside the
// adapter; the core never branches on source shape.
type RawMatchRecord struct {
	Home       string            `json:"home"`
	Away       string            `json:"away"`
	League     string            `json:"league,omitempty"`
	Date       string            `json:"date,omitempty"` // ISO date, used in the match key
	Selections map[string]string `json:"selections"`     // label -> odds text
}

// MatchName renders the display name used for team matching.
func (r RawMatchRecord) MatchName() string {
	return r.Home + " vs " + r.Away
}
