// Package history records one utilization sample per calendar day from
// the authoritative usage endpoint and serves bounded trailing windows
// for trend charting.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/ports"
)

// StateKey is the store key the sample map persists under.
const StateKey = "history"

// Retention bounds how far back samples are kept, independent of any
// requested window size.
const Retention = 30 * 24 * time.Hour

type Manager struct {
	store  ports.StateStore
	clock  ports.Clock
	logger zerolog.Logger

	samples map[string]domain.HistorySample
}

func New(store ports.StateStore, clock ports.Clock, logger zerolog.Logger) *Manager {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Manager{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Load restores persisted samples and purges those past retention.
// Unreadable history starts empty rather than failing.
func (m *Manager) Load(ctx context.Context) error {
	samples := map[string]domain.HistorySample{}
	found, err := m.store.Get(ctx, StateKey, &samples)
	if err != nil {
		m.logger.Warn().Err(err).Msg("history unreadable, starting empty")
		samples = map[string]domain.HistorySample{}
	} else if !found {
		m.logger.Debug().Msg("no persisted history")
	}

	cutoff := m.clock.Now().Add(-Retention)
	for key, sample := range samples {
		if sample.Timestamp.Before(cutoff) {
			delete(samples, key)
		}
	}

	m.samples = samples
	return m.save(ctx)
}

// RecordReport upserts today's sample from an authoritative report.
// A later reading of the same day overwrites the earlier one.
func (m *Manager) RecordReport(ctx context.Context, report domain.UsageReport) error {
	if !report.HasWindows() {
		return nil
	}

	now := m.clock.Now()
	sample := domain.HistorySample{
		DateKey:   domain.DateKey(now),
		Timestamp: now,
	}
	if report.FiveHour != nil {
		sample.FiveHourPercent = report.FiveHour.UsedPercent()
	}
	if report.SevenDay != nil {
		sample.SevenDayPercent = report.SevenDay.UsedPercent()
	}
	if report.SevenDayOpus != nil {
		sample.SevenDayOpusPercent = report.SevenDayOpus.UsedPercent()
	}

	if m.samples == nil {
		m.samples = map[string]domain.HistorySample{}
	}
	m.samples[sample.DateKey] = sample
	return m.save(ctx)
}

// TrailingWindow returns exactly n samples spanning today and the
// previous n-1 calendar days, oldest first, synthesizing zero-valued
// placeholders for days without a recording. It is a stateless query and
// safe to call repeatedly.
func (m *Manager) TrailingWindow(n int) []domain.HistorySample {
	if n <= 0 {
		return nil
	}

	now := m.clock.Now()
	out := make([]domain.HistorySample, 0, n)
	for i := n - 1; i >= 0; i-- {
		key := domain.DateKey(now.AddDate(0, 0, -i))
		if sample, ok := m.samples[key]; ok {
			out = append(out, sample)
			continue
		}
		out = append(out, domain.HistorySample{DateKey: key})
	}
	return out
}

func (m *Manager) save(ctx context.Context) error {
	if err := m.store.Set(ctx, StateKey, m.samples); err != nil {
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
