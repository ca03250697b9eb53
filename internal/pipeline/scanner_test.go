package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitarb/orbitarb/internal/arb"
	"github.com/orbitarb/orbitarb/internal/cache/memory"
	"github.com/orbitarb/orbitarb/internal/domain"
	"github.com/orbitarb/orbitarb/internal/match"
	"github.com/orbitarb/orbitarb/internal/normalize"
	"github.com/orbitarb/orbitarb/internal/notify"
	"github.com/orbitarb/orbitarb/internal/odds"
	"github.com/orbitarb/orbitarb/internal/source"
)

// fakeSender captures notifications instead of delivering them.
type fakeSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSender) Send(_ context.Context, _, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

// failSource always fails its fetch.
type failSource struct{ site string }

func (f *failSource) Site() string { return f.site }

func (f *failSource) Fetch(context.Context) ([]domain.RawMatchRecord, error) {
	return nil, errors.New("feed unavailable")
}

// fakeAlertLog records inserted opportunities in memory.
type fakeAlertLog struct {
	mu   sync.Mutex
	opps []domain.Opportunity
}

func (f *fakeAlertLog) Insert(_ context.Context, opp domain.Opportunity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opps = append(f.opps, opp)
	return nil
}

func (f *fakeAlertLog) ListRecent(_ context.Context, _ domain.ListOpts) ([]domain.Opportunity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Opportunity, len(f.opps))
	copy(out, f.opps)
	return out, nil
}

// fakeBroadcaster collects fanned-out opportunities.
type fakeBroadcaster struct {
	mu   sync.Mutex
	opps []domain.Opportunity
}

func (f *fakeBroadcaster) Broadcast(o domain.Opportunity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opps = append(f.opps, o)
}

func newTestScanner(t *testing.T, lay, back domain.SnapshotSource, sender notify.Sender, alerts domain.AlertLogStore, bc Broadcaster) *Scanner {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	norm := normalize.New(nil)
	matcher := match.New(norm, match.DefaultThreshold, logger)
	comparator := odds.New(odds.Config{})
	finder := arb.NewFinder(norm, matcher, comparator, "orbit", "oddsportal", logger)
	dedupe := memory.NewDedupeCache(10 * time.Minute)

	var senders []notify.Sender
	if sender != nil {
		senders = append(senders, sender)
	}
	notifier := notify.NewNotifier(senders, logger)

	return NewScanner(lay, back, finder, dedupe, notifier, nil, alerts, bc, logger)
}

func TestRunCycleEmitsThenSuppresses(t *testing.T) {
	lay := source.NewStaticSource("orbit", source.DemoLayRecords())
	back := source.NewStaticSource("oddsportal", source.DemoBackRecords())
	sender := &fakeSender{}
	alerts := &fakeAlertLog{}
	bc := &fakeBroadcaster{}

	s := newTestScanner(t, lay, back, sender, alerts, bc)
	ctx := context.Background()

	// First cycle finds and emits the demo opportunity.
	res, err := s.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusOpportunities, res.Status)
	assert.Equal(t, 1, res.Found)
	require.Len(t, res.Emitted, 1)
	assert.Equal(t, "Arsenal vs Chelsea", res.Emitted[0].MatchName)
	assert.Equal(t, 1, sender.count())
	assert.Len(t, alerts.opps, 1)
	assert.Len(t, bc.opps, 1)

	// Second cycle with identical input: found again, suppressed by dedupe.
	// The outcome change from opportunities to none sends a status notice.
	res, err = s.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusNoOpportunities, res.Status)
	assert.Equal(t, 1, res.Found)
	assert.Empty(t, res.Emitted)
	assert.Equal(t, 2, sender.count(), "alert plus one status notice")
	assert.Contains(t, sender.last(), "No arbitrage opportunities")
	assert.Len(t, alerts.opps, 1)

	// Third identical cycle: same outcome, notice not repeated.
	_, err = s.RunCycle(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sender.count(), "repeat outcome stays quiet")
}

func TestRunCycleInsufficientData(t *testing.T) {
	back := source.NewStaticSource("oddsportal", source.DemoBackRecords())

	t.Run("failing lay feed", func(t *testing.T) {
		sender := &fakeSender{}
		s := newTestScanner(t, &failSource{site: "orbit"}, back, sender, nil, nil)

		res, err := s.RunCycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StatusInsufficientData, res.Status)
		assert.Zero(t, res.LayRecords)
		assert.Equal(t, 1, sender.count(), "data issue notice reaches the sink")
		assert.Contains(t, sender.last(), "Scan skipped")

		// Same outcome again: the notice is not repeated.
		_, err = s.RunCycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sender.count())
	})

	t.Run("empty back feed", func(t *testing.T) {
		lay := source.NewStaticSource("orbit", source.DemoLayRecords())
		empty := source.NewStaticSource("oddsportal", nil)
		sender := &fakeSender{}
		s := newTestScanner(t, lay, empty, sender, nil, nil)

		res, err := s.RunCycle(context.Background())
		require.NoError(t, err)
		assert.Equal(t, StatusInsufficientData, res.Status)
		assert.Equal(t, 1, sender.count(), "data issue notice reaches the sink")
	})
}

func TestRunCycleNoOpportunities(t *testing.T) {
	// Back odds well below lay: outside the acceptance band.
	lay := source.NewStaticSource("orbit", source.DemoLayRecords())
	back := source.NewStaticSource("oddsportal", []domain.RawMatchRecord{
		{
			Home:   "Arsenal",
			Away:   "Chelsea",
			League: "EPL",
			Date:   time.Now().UTC().Format("2006-01-02"),
			Selections: map[string]string{
				"1": "1.50",
			},
		},
	})
	sender := &fakeSender{}
	s := newTestScanner(t, lay, back, sender, nil, nil)

	res, err := s.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusNoOpportunities, res.Status)
	assert.Zero(t, res.Found)
	assert.Equal(t, 1, sender.count(), "empty-cycle notice reaches the sink")
	assert.Contains(t, sender.last(), "No arbitrage opportunities")
}

func TestSnapshotTracksCycles(t *testing.T) {
	lay := source.NewStaticSource("orbit", source.DemoLayRecords())
	back := source.NewStaticSource("oddsportal", source.DemoBackRecords())
	s := newTestScanner(t, lay, back, nil, nil, nil)

	before := s.Snapshot()
	assert.Zero(t, before.Cycles)

	_, err := s.RunCycle(context.Background())
	require.NoError(t, err)

	after := s.Snapshot()
	assert.Equal(t, int64(1), after.Cycles)
	assert.Equal(t, StatusOpportunities, after.LastStatus)
	assert.Equal(t, 1, after.LastEmitted)
	assert.False(t, after.LastCycleAt.IsZero())
}

func TestRunCycleCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestScanner(t, &failSource{site: "orbit"}, &failSource{site: "oddsportal"}, nil, nil, nil)
	_, err := s.RunCycle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunLoopStopsOnCancel(t *testing.T) {
	lay := source.NewStaticSource("orbit", source.DemoLayRecords())
	back := source.NewStaticSource("oddsportal", source.DemoBackRecords())
	s := newTestScanner(t, lay, back, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunLoop(ctx, time.Hour) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}
