package domain

import "context"

// SnapshotSource is a venue data adapter. Fetch returns the raw match records
// visible at the venue right now; an empty slice means "no data this cycle"
// and is not distinguished from "zero matches available". Implementations own
// their transport timeouts.
type SnapshotSource interface {
	Site() string
	Fetch(ctx context.Context) ([]RawMatchRecord, error)
}
