// Package application wires the usage engine together behind one
// facade: observed traffic and scanned text flow in, snapshots and
// reports flow out.
package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/classify"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/history"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ledger"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/plan"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

var ErrNoUsageSource = errors.New("no authoritative usage source configured")

const messageSendKind = "message_send"

type Service struct {
	ledger  *ledger.Ledger
	plans   *plan.Detector
	history *history.Manager
	source  ports.UsageSource
	clock   ports.Clock
	logger  zerolog.Logger

	mu         sync.Mutex
	dedupe     *classify.Deduper
	feed       *Feed
	lastReport *domain.UsageReport
	refreshSeq uint64
}

func NewService(l *ledger.Ledger, detector *plan.Detector, hist *history.Manager, source ports.UsageSource, feed *Feed, clock ports.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if feed == nil {
		feed = NewFeed()
	}

	return &Service{
		ledger:  l,
		plans:   detector,
		history: hist,
		source:  source,
		clock:   clock,
		logger:  logger,
		dedupe:  classify.NewDeduper(classify.DedupeWindow),
		feed:    feed,
	}
}

// Init loads persisted state. Both loads degrade to defaults internally,
// so an error here means the backing store itself is unusable.
func (s *Service) Init(ctx context.Context) error {
	if err := s.ledger.Load(ctx); err != nil {
		return fmt.Errorf("load usage state: %w", err)
	}
	if err := s.history.Load(ctx); err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	return nil
}

// ObserveRequest feeds one outgoing request into the engine. It returns
// whether the request counted as a sent message; duplicates inside the
// dedup window are dropped.
func (s *Service) ObserveRequest(ctx context.Context, req classify.ObservedRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed.SetURL(req.URL)

	if !classify.IsMessageSendRequest(req.URL, req.Method) {
		return false, nil
	}
	if !s.dedupe.Accept(messageSendKind, s.clock.Now()) {
		s.logger.Debug().Str("url", req.URL).Msg("duplicate send suppressed")
		return false, nil
	}

	if err := s.ledger.RecordMessageSent(ctx); err != nil {
		return false, fmt.Errorf("record message: %w", err)
	}
	return true, nil
}

// ObserveResponse feeds one response into the engine, triggering the
// limit transition on 429 statuses and rate-limit headers.
func (s *Service) ObserveResponse(ctx context.Context, resp classify.ObservedResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed.SetURL(resp.URL)
	return s.ledger.HandleResponse(ctx, resp, s.plans.PlanConfig(ctx))
}

// ScanContent feeds visible page text into the engine. The text also
// becomes the sample for page-based plan detection.
func (s *Service) ScanContent(ctx context.Context, text string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed.SetText(text)
	return s.ledger.ScanContent(ctx, text, s.plans.PlanConfig(ctx))
}

// Status projects the current snapshot. Reading status is also where an
// elapsed limit episode gets cleared, so a snapshot never reports a
// limit whose estimated reset has already passed.
func (s *Service) Status(ctx context.Context) (domain.UsageSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ledger.ClearExpired(ctx); err != nil {
		return domain.UsageSnapshot{}, fmt.Errorf("clear expired limit: %w", err)
	}
	return s.snapshot(ctx), nil
}

func (s *Service) snapshot(ctx context.Context) domain.UsageSnapshot {
	now := s.clock.Now()
	state := s.ledger.State()
	planID := s.plans.CurrentPlan(ctx)
	daily, weekly := s.ledger.Percentages(s.plans.Catalog().Get(planID))
	today := state.Today(now)

	snap := domain.UsageSnapshot{
		IsLimited:              state.IsLimited,
		ResetTimeDisplay:       "unknown",
		MessageCount:           state.MessageCount,
		TodayMessages:          today.Messages,
		TodayLimits:            today.Limits,
		SessionDurationDisplay: domain.FormatDuration(now.Sub(state.SessionStartTime)),
		DailyPercentage:        daily,
		WeeklyPercentage:       weekly,
		DailySeverity:          domain.SeverityFor(daily),
		WeeklySeverity:         domain.SeverityFor(weekly),
		PlanID:                 planID,
	}

	if state.IsLimited {
		snap.LimitType = state.LimitType
		snap.LimitMessage = state.LimitMessage
	}

	if state.IsLimited && state.EstimatedResetTime != nil {
		remaining := state.EstimatedResetTime.Sub(now)
		if remaining < 0 {
			remaining = 0
		}
		snap.RemainingTimeMs = remaining.Milliseconds()
		snap.FormattedRemaining = domain.FormatDuration(remaining)
		snap.ResetTimeDisplay = domain.FormatClock(*state.EstimatedResetTime)
	}

	return snap
}

// ForceRefresh fetches the authoritative usage report, records a history
// sample, and refreshes plan detection from the report's plan type. When
// the fetch fails and a previous report exists, the stale report is
// returned alongside a nil error; the caller sees last known good.
func (s *Service) ForceRefresh(ctx context.Context) (domain.UsageReport, error) {
	if s.source == nil {
		return domain.UsageReport{}, ErrNoUsageSource
	}

	s.mu.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	s.mu.Unlock()

	report, err := s.source.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if s.lastReport != nil {
			s.logger.Warn().Err(err).Msg("usage fetch failed, serving cached report")
			return *s.lastReport, nil
		}
		return domain.UsageReport{}, fmt.Errorf("fetch usage report: %w", err)
	}

	// A slower fetch must not overwrite the result of a newer one.
	if seq != s.refreshSeq {
		return report, nil
	}

	s.lastReport = &report
	if id, ok := plan.MapPlanType(report.PlanType); ok {
		s.plans.NoteDetected(ctx, id, "usage_api")
	}
	if err := s.history.RecordReport(ctx, report); err != nil {
		s.logger.Warn().Err(err).Msg("record history sample")
	}

	return report, nil
}

// LastReport returns the most recent successfully fetched usage report.
func (s *Service) LastReport() (domain.UsageReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastReport == nil {
		return domain.UsageReport{}, false
	}
	return *s.lastReport, true
}

// History returns the trailing n days of utilization samples, oldest
// first, with zero placeholders for days without a sample.
func (s *Service) History(n int) []domain.HistorySample {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.TrailingWindow(n)
}

// SetPlan installs an explicit plan override.
func (s *Service) SetPlan(ctx context.Context, id domain.PlanID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.plans.SetPlan(ctx, id)
}

// ClearPlanOverride removes the override and re-runs detection.
func (s *Service) ClearPlanOverride(ctx context.Context) (domain.PlanID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.plans.ClearOverride(ctx); err != nil {
		return "", err
	}
	return s.plans.Redetect(ctx), nil
}

// Plan returns the active plan id, its quota row, and the detection
// method that produced it.
func (s *Service) Plan(ctx context.Context) (domain.PlanID, domain.PlanConfig, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.plans.CurrentPlan(ctx)
	return id, s.plans.Catalog().Get(id), s.plans.Provenance()
}

// PlanCatalog exposes the quota rows for presentation.
func (s *Service) PlanCatalog() domain.Catalog {
	return s.plans.Catalog()
}

// ManualAdd bumps the session and daily counters by n, for corrections.
func (s *Service) ManualAdd(ctx context.Context, n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.AddMessages(ctx, n)
}

// ResetSession zeroes the session counters and clears any limit state
// while keeping the per-day statistics.
func (s *Service) ResetSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.ResetSession(ctx)
}

// ClearAllData wipes the persisted usage state entirely.
func (s *Service) ClearAllData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ledger.ClearAll(ctx)
}

// Export assembles the portable backup payload.
func (s *Service) Export(ctx context.Context, appVersion string) (ExportPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ledger.ClearExpired(ctx); err != nil {
		return ExportPayload{}, fmt.Errorf("clear expired limit: %w", err)
	}

	id := s.plans.CurrentPlan(ctx)
	return ExportPayload{
		ExportTime:    s.clock.Now(),
		Version:       appVersion,
		Plan:          id,
		PlanConfig:    s.plans.Catalog().Get(id),
		CurrentStatus: s.snapshot(ctx),
		DailyStats:    s.ledger.State().DailyStats,
	}, nil
}

// WaitInterval clamps a polling interval to a sane floor.
func WaitInterval(d time.Duration) time.Duration {
	if d < time.Second {
		return time.Second
	}
	return d
}
