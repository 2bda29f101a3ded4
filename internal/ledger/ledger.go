// Package ledger owns the persisted usage state: message counters, per-day
// statistics and the normal/limited state machine.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/classify"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

// StateKey is the store key the usage state persists under.
const StateKey = "usageData"

const limitMessageMaxLen = 500

// Ledger mediates every read and write of the usage state. It expects its
// callers to have de-duplicated detection triggers already; recording is
// unconditional here.
type Ledger struct {
	store    ports.StateStore
	clock    ports.Clock
	notifier ports.Notifier
	logger   zerolog.Logger

	state domain.UsageState
}

func New(store ports.StateStore, clock ports.Clock, notifier ports.Notifier, logger zerolog.Logger) *Ledger {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &Ledger{
		store:    store,
		clock:    clock,
		notifier: notifier,
		logger:   logger,
	}
}

// Load restores persisted state, falling back to a fresh session when the
// store has nothing usable, then runs the retention sweep. It never fails
// on storage trouble; worst case is starting over from defaults.
func (l *Ledger) Load(ctx context.Context) error {
	now := l.clock.Now()
	state := domain.NewUsageState(now)

	found, err := l.store.Get(ctx, StateKey, &state)
	if err != nil {
		l.logger.Warn().Err(err).Msg("usage state unreadable, starting fresh")
		state = domain.NewUsageState(now)
	} else if !found {
		l.logger.Debug().Msg("no persisted usage state")
	}

	state.EnsureDay(now)
	if removed := state.SweepOlderThan(now, domain.RetentionWindow); removed > 0 {
		l.logger.Debug().Int("removed", removed).Msg("retention sweep purged day buckets")
	}

	l.state = state
	return l.save(ctx)
}

// RecordMessageSent counts one user message against the session and
// today's bucket.
func (l *Ledger) RecordMessageSent(ctx context.Context) error {
	return l.addMessages(ctx, 1)
}

// AddMessages counts n manually reported messages. Non-positive counts
// are rejected as a no-op.
func (l *Ledger) AddMessages(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	return l.addMessages(ctx, n)
}

func (l *Ledger) addMessages(ctx context.Context, n int) error {
	now := l.clock.Now()
	l.state.EnsureDay(now)

	key := domain.DateKey(now)
	stat := l.state.DailyStats[key]
	stat.Messages += n
	l.state.DailyStats[key] = stat
	l.state.MessageCount += n

	l.logger.Debug().Int("session_total", l.state.MessageCount).Msg("message recorded")
	return l.save(ctx)
}

// HandleResponse reacts to a completed response from the interception
// feed: an HTTP 429 or an exhausted rate-limit header opens a limit
// episode, and a reset header refines the estimated recovery time.
func (l *Ledger) HandleResponse(ctx context.Context, resp classify.ObservedResponse, plan domain.PlanConfig) error {
	if resp.Status == 429 {
		parsed := classify.ParseResetDuration(resp.Body)
		if err := l.EnterLimited(ctx, domain.LimitTypeRateLimit, limitSnippet(resp.Body), parsed, plan); err != nil {
			return err
		}
	}

	if remaining := strings.TrimSpace(resp.Header("x-ratelimit-remaining")); remaining != "" {
		if value, err := strconv.Atoi(remaining); err == nil && value == 0 {
			if err := l.EnterLimited(ctx, domain.LimitTypeRateLimit, "", 0, plan); err != nil {
				return err
			}
		}
	}

	if reset := strings.TrimSpace(resp.Header("x-ratelimit-reset")); reset != "" {
		if unix, err := strconv.ParseInt(reset, 10, 64); err == nil {
			at := time.Unix(unix, 0)
			if at.After(l.clock.Now()) {
				l.state.EstimatedResetTime = &at
				return l.save(ctx)
			}
		}
	}

	return nil
}

// ScanContent classifies a rendered-content snapshot. A limit phrase
// opens (or refreshes) a limit episode; otherwise, an already-expired
// episode is closed. Returns whether the ledger is limited afterwards.
func (l *Ledger) ScanContent(ctx context.Context, text string, plan domain.PlanConfig) (bool, error) {
	if classify.IsLimitMessage(text) {
		parsed := classify.ParseResetDuration(text)
		limitType := classify.LimitTypeFor(0, text)
		if err := l.EnterLimited(ctx, limitType, limitSnippet(text), parsed, plan); err != nil {
			return l.state.IsLimited, err
		}
		return true, nil
	}

	if _, err := l.ClearExpired(ctx); err != nil {
		return l.state.IsLimited, err
	}
	return l.state.IsLimited, nil
}

// EnterLimited opens a limit episode, or refreshes the fields of an
// already-open one. Only a fresh transition bumps today's limit counter
// and emits a notification. A parsed recovery delay overrides the plan's
// default reset period.
func (l *Ledger) EnterLimited(ctx context.Context, limitType domain.LimitType, message string, parsed time.Duration, plan domain.PlanConfig) error {
	now := l.clock.Now()
	l.state.EnsureDay(now)
	fresh := !l.state.IsLimited

	wait := time.Duration(plan.ResetPeriodHours) * time.Hour
	if parsed > 0 {
		wait = parsed
	}
	reset := now.Add(wait)

	l.state.IsLimited = true
	l.state.LimitType = limitType
	if message != "" {
		l.state.LimitMessage = message
	}

	if fresh {
		l.state.LimitDetectedAt = &now
		l.state.EstimatedResetTime = &reset

		key := domain.DateKey(now)
		stat := l.state.DailyStats[key]
		stat.Limits++
		l.state.DailyStats[key] = stat

		l.logger.Info().Str("type", string(limitType)).Time("reset", reset).Msg("limit episode opened")
		l.notifier.Notify("Claude usage limit reached", "Expected to recover in "+domain.FormatDuration(wait))
	} else if parsed > 0 {
		// Re-detection with an announced delay refines the estimate;
		// without one the original estimate stands.
		l.state.EstimatedResetTime = &reset
	}

	return l.save(ctx)
}

// ClearExpired closes the current limit episode once wall-clock time has
// reached the estimated reset, reporting whether a transition happened.
// Calling it while already normal, or again after it fired, is a no-op.
func (l *Ledger) ClearExpired(ctx context.Context) (bool, error) {
	if !l.state.IsLimited {
		return false, nil
	}
	if l.state.EstimatedResetTime != nil && l.clock.Now().Before(*l.state.EstimatedResetTime) {
		return false, nil
	}

	l.state.IsLimited = false
	l.state.LimitDetectedAt = nil
	l.state.EstimatedResetTime = nil
	l.state.LimitMessage = ""

	l.logger.Info().Msg("limit episode cleared")
	l.notifier.Notify("Claude usage recovered", "You can continue chatting now")
	return true, l.save(ctx)
}

// ResetSession zeroes the session counters and limited state. Daily
// statistics are deliberately untouched.
func (l *Ledger) ResetSession(ctx context.Context) error {
	l.state.MessageCount = 0
	l.state.IsLimited = false
	l.state.LimitDetectedAt = nil
	l.state.EstimatedResetTime = nil
	l.state.LimitType = domain.LimitTypeNone
	l.state.LimitMessage = ""
	l.state.SessionStartTime = l.clock.Now()
	return l.save(ctx)
}

// ClearAll wipes every counter and bucket, leaving a fresh session.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.state = domain.NewUsageState(l.clock.Now())
	return l.save(ctx)
}

// Percentages computes the clamped daily and rolling-weekly usage
// percentages against the plan's caps.
func (l *Ledger) Percentages(plan domain.PlanConfig) (daily, weekly int) {
	now := l.clock.Now()
	daily = domain.UsagePercent(l.state.Today(now).Messages, plan.DailyMessageCap)
	weekly = domain.UsagePercent(l.state.TrailingMessages(now, 7), plan.WeeklyMessageCap)
	return daily, weekly
}

// State returns a copy of the current usage state.
func (l *Ledger) State() domain.UsageState {
	state := l.state
	state.DailyStats = make(map[string]domain.DayStat, len(l.state.DailyStats))
	for key, stat := range l.state.DailyStats {
		state.DailyStats[key] = stat
	}
	return state
}

func (l *Ledger) save(ctx context.Context) error {
	if err := l.store.Set(ctx, StateKey, l.state); err != nil {
		return fmt.Errorf("persist usage state: %w", err)
	}
	return nil
}

// limitSnippet trims a captured limit text down to something worth
// keeping as the last observed human-readable message.
func limitSnippet(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && classify.IsLimitMessage(line) {
			trimmed = line
			break
		}
	}
	if len(trimmed) > limitMessageMaxLen {
		trimmed = trimmed[:limitMessageMaxLen]
	}
	return trimmed
}
