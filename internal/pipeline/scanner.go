package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/orbitarb/orbitarb/internal/arb"
	"github.com/orbitarb/orbitarb/internal/domain"
	"github.com/orbitarb/orbitarb/internal/notify"
)

// CycleStatus classifies the outcome of one scan cycle.
type CycleStatus string

const (
	// StatusOpportunities means at least one fresh opportunity was emitted.
	StatusOpportunities CycleStatus = "opportunities"
	// StatusNoOpportunities means both feeds returned data but nothing
	// cleared the comparison and dedupe gates.
	StatusNoOpportunities CycleStatus = "no_opportunities"
	// StatusInsufficientData means one or both feeds returned no records.
	StatusInsufficientData CycleStatus = "insufficient_data"
)

// CycleResult summarizes one scan cycle.
type CycleResult struct {
	Status      CycleStatus
	LayRecords  int
	BackRecords int
	Found       int
	Emitted     []domain.Opportunity
	Duration    time.Duration
}

// Broadcaster receives accepted opportunities for live fan-out (websocket hub).
type Broadcaster interface {
	Broadcast(o domain.Opportunity)
}

// Scanner drives the scan cycle: fetch both feeds, find opportunities,
// suppress recent duplicates, then notify and record the survivors.
type Scanner struct {
	laySource   domain.SnapshotSource
	backSource  domain.SnapshotSource
	finder      *arb.Finder
	dedupe      domain.DedupeCache
	notifier    *notify.Notifier
	subscribers domain.SubscriberStore
	alertLog    domain.AlertLogStore
	broadcaster Broadcaster
	logger      *slog.Logger

	mu        sync.RWMutex
	last      CycleResult
	lastAt    time.Time
	cycles    int64
	startedAt time.Time
}

// NewScanner creates a Scanner. subscribers, alertLog and broadcaster may be
// nil, in which case the corresponding step is skipped.
func NewScanner(
	laySource domain.SnapshotSource,
	backSource domain.SnapshotSource,
	finder *arb.Finder,
	dedupe domain.DedupeCache,
	notifier *notify.Notifier,
	subscribers domain.SubscriberStore,
	alertLog domain.AlertLogStore,
	broadcaster Broadcaster,
	logger *slog.Logger,
) *Scanner {
	return &Scanner{
		laySource:   laySource,
		backSource:  backSource,
		finder:      finder,
		dedupe:      dedupe,
		notifier:    notifier,
		subscribers: subscribers,
		alertLog:    alertLog,
		broadcaster: broadcaster,
		logger:      logger.With(slog.String("component", "scanner")),
		startedAt:   time.Now().UTC(),
	}
}

// Status is a snapshot of the scanner's progress for the status endpoint.
type Status struct {
	StartedAt   time.Time   `json:"started_at"`
	Cycles      int64       `json:"cycles"`
	LastCycleAt time.Time   `json:"last_cycle_at"`
	LastStatus  CycleStatus `json:"last_status"`
	LastFound   int         `json:"last_found"`
	LastEmitted int         `json:"last_emitted"`
}

// Snapshot returns the current scanner status.
func (s *Scanner) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		StartedAt:   s.startedAt,
		Cycles:      s.cycles,
		LastCycleAt: s.lastAt,
		LastStatus:  s.last.Status,
		LastFound:   s.last.Found,
		LastEmitted: len(s.last.Emitted),
	}
}

// recordResult stores the outcome of the latest cycle.
func (s *Scanner) recordResult(res CycleResult) {
	s.mu.Lock()
	s.last = res
	s.lastAt = time.Now().UTC()
	s.cycles++
	s.mu.Unlock()
}

// RunCycle executes one full scan cycle. A failing side feed degrades the
// cycle to insufficient data rather than failing it; only context
// cancellation is returned as an error.
func (s *Scanner) RunCycle(ctx context.Context) (CycleResult, error) {
	start := time.Now()

	layRecords, err := s.laySource.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return CycleResult{}, ctx.Err()
		}
		s.logger.Error("lay feed fetch failed",
			slog.String("site", s.laySource.Site()),
			slog.String("error", err.Error()),
		)
		layRecords = nil
	}

	backRecords, err := s.backSource.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return CycleResult{}, ctx.Err()
		}
		s.logger.Error("back feed fetch failed",
			slog.String("site", s.backSource.Site()),
			slog.String("error", err.Error()),
		)
		backRecords = nil
	}

	res := CycleResult{LayRecords: len(layRecords), BackRecords: len(backRecords)}

	if len(layRecords) == 0 || len(backRecords) == 0 {
		res.Status = StatusInsufficientData
		res.Duration = time.Since(start)
		s.logger.Warn("scan cycle skipped, insufficient data",
			slog.Int("lay_records", res.LayRecords),
			slog.Int("back_records", res.BackRecords),
		)
		s.notifyStatus(ctx, res)
		s.recordResult(res)
		return res, nil
	}

	found := s.finder.Find(ctx, layRecords, backRecords)
	res.Found = len(found)

	for _, o := range found {
		matchID, market, selection := o.DedupeKey()
		seen, err := s.dedupe.SeenRecently(ctx, matchID, market, selection)
		if err != nil {
			s.logger.Error("dedupe lookup failed, emitting anyway",
				slog.String("match_id", o.MatchID),
				slog.String("error", err.Error()),
			)
		} else if seen {
			s.logger.Debug("opportunity suppressed by dedupe window",
				slog.String("match_id", o.MatchID),
				slog.String("selection", o.Selection),
			)
			continue
		}
		if err := s.dedupe.Mark(ctx, matchID, market, selection); err != nil {
			s.logger.Error("dedupe mark failed",
				slog.String("match_id", o.MatchID),
				slog.String("error", err.Error()),
			)
		}
		res.Emitted = append(res.Emitted, o)
	}

	if len(res.Emitted) == 0 {
		res.Status = StatusNoOpportunities
		res.Duration = time.Since(start)
		s.logger.Info("scan cycle complete, no opportunities",
			slog.Int("lay_records", res.LayRecords),
			slog.Int("back_records", res.BackRecords),
			slog.Int("found", res.Found),
			slog.Duration("duration", res.Duration),
		)
		s.notifyStatus(ctx, res)
		s.recordResult(res)
		return res, nil
	}

	s.record(ctx, res.Emitted)
	s.publish(ctx, res.Emitted)

	res.Status = StatusOpportunities
	res.Duration = time.Since(start)
	s.logger.Info("scan cycle complete",
		slog.Int("found", res.Found),
		slog.Int("emitted", len(res.Emitted)),
		slog.Duration("duration", res.Duration),
	)
	s.recordResult(res)
	return res, nil
}

// notifyStatus sends the empty-cycle status notice to subscribers, so end
// users can tell "nothing found" apart from "feeds are down". Consecutive
// cycles with the same outcome notify only once; the notice repeats after
// the outcome changes. Must be called before recordResult so the previous
// cycle's status is still available.
func (s *Scanner) notifyStatus(ctx context.Context, res CycleResult) {
	if s.notifier == nil || s.notifier.Senders() == 0 {
		return
	}
	s.mu.RLock()
	prev := s.last.Status
	s.mu.RUnlock()
	if prev == res.Status {
		return
	}

	var title, message string
	switch res.Status {
	case StatusNoOpportunities:
		title, message = notify.FormatNoOpportunities()
	case StatusInsufficientData:
		title, message = notify.FormatDataIssue(res.LayRecords, res.BackRecords)
	default:
		return
	}

	result, err := s.notifier.Broadcast(ctx, title, message, s.recipients(ctx))
	if err != nil {
		s.logger.Warn("status notice delivery incomplete",
			slog.Int("delivered", result.Delivered),
			slog.Int("failed", result.Failed),
			slog.String("error", err.Error()),
		)
	}
}

// record persists emitted opportunities to the alert log, if configured.
func (s *Scanner) record(ctx context.Context, opps []domain.Opportunity) {
	if s.alertLog == nil {
		return
	}
	for _, o := range opps {
		if err := s.alertLog.Insert(ctx, o); err != nil {
			s.logger.Error("alert log insert failed",
				slog.String("opportunity_id", o.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// publish delivers emitted opportunities to notification channels and the
// live broadcaster.
func (s *Scanner) publish(ctx context.Context, opps []domain.Opportunity) {
	if s.broadcaster != nil {
		for _, o := range opps {
			s.broadcaster.Broadcast(o)
		}
	}
	if s.notifier == nil || s.notifier.Senders() == 0 {
		return
	}

	recipients := s.recipients(ctx)
	title, message := notify.FormatBatch(opps)
	result, err := s.notifier.Broadcast(ctx, title, message, recipients)
	if err != nil {
		s.logger.Error("notification broadcast incomplete",
			slog.Int("delivered", result.Delivered),
			slog.Int("failed", result.Failed),
			slog.String("error", err.Error()),
		)
		return
	}

	if s.subscribers != nil {
		now := time.Now().UTC()
		for _, r := range recipients {
			if err := s.subscribers.RecordNotification(ctx, r, now); err != nil {
				s.logger.Warn("could not record notification for subscriber",
					slog.String("chat_id", r),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// recipients lists the chat IDs of all registered subscribers.
func (s *Scanner) recipients(ctx context.Context) []string {
	if s.subscribers == nil {
		return nil
	}
	subs, err := s.subscribers.List(ctx)
	if err != nil {
		s.logger.Error("could not list subscribers",
			slog.String("error", err.Error()),
		)
		return nil
	}
	ids := make([]string, 0, len(subs))
	for _, sub := range subs {
		ids = append(ids, sub.ChatID)
	}
	return ids
}

// RunLoop runs scan cycles until ctx is cancelled. The sleep between cycles
// is the configured interval minus the elapsed cycle time, floored at zero,
// so cycle starts stay evenly spaced. A panic inside one cycle is recovered
// and logged; the loop continues with the next cycle.
func (s *Scanner) RunLoop(ctx context.Context, interval time.Duration) error {
	s.logger.Info("scan loop starting", slog.Duration("interval", interval))

	for {
		res, err := s.safeCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("scan loop stopped")
				return ctx.Err()
			}
			s.logger.Error("scan cycle failed", slog.String("error", err.Error()))
		}

		sleep := interval - res.Duration
		if sleep < 0 {
			sleep = 0
		}

		select {
		case <-ctx.Done():
			s.logger.Info("scan loop stopped")
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// safeCycle wraps RunCycle with panic recovery so a malformed feed cannot
// take down the loop.
func (s *Scanner) safeCycle(ctx context.Context) (res CycleResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: scan cycle panic: %v", r)
		}
	}()
	return s.RunCycle(ctx)
}
