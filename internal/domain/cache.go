package domain

import "context"

// DedupeCache remembers which (match, market, selection) keys have already
// been alerted on, so repeat notifications are suppressed within a cooldown
// window. Expiry is evaluated lazily on lookup; no background sweep is
// required for correctness.
type DedupeCache interface {
	// SeenRecently reports whether the key was marked within the window.
	SeenRecently(ctx context.Context, matchID string, market Market, selection string) (bool, error)
	// Mark records (or refreshes) the key at the current time.
	Mark(ctx context.Context, matchID string, market Market, selection string) error
}
