package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

type memStore struct {
	values map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{values: map[string]json.RawMessage{}}
}

func (s *memStore) Get(_ context.Context, key string, out any) (bool, error) {
	raw, ok := s.values[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *memStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.values, key)
	return nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func window(utilization float64) *domain.UsageWindow {
	return &domain.UsageWindow{Utilization: utilization}
}

func TestRecordReportUpsertsToday(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	clock := &fakeClock{now: now}
	m := New(newMemStore(), clock, zerolog.Nop())
	require.NoError(t, m.Load(context.Background()))

	require.NoError(t, m.RecordReport(context.Background(), domain.UsageReport{
		FiveHour: window(0.42),
		SevenDay: window(0.10),
	}))

	// A later reading of the same day wins.
	clock.now = now.Add(2 * time.Hour)
	require.NoError(t, m.RecordReport(context.Background(), domain.UsageReport{
		FiveHour:     window(0.60),
		SevenDay:     window(0.15),
		SevenDayOpus: window(0.05),
	}))

	samples := m.TrailingWindow(1)
	require.Len(t, samples, 1)
	assert.Equal(t, domain.DateKey(now), samples[0].DateKey)
	assert.Equal(t, 60, samples[0].FiveHourPercent)
	assert.Equal(t, 15, samples[0].SevenDayPercent)
	assert.Equal(t, 5, samples[0].SevenDayOpusPercent)
}

func TestRecordReportIgnoresEmptyReport(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	m := New(newMemStore(), &fakeClock{now: now}, zerolog.Nop())
	require.NoError(t, m.Load(context.Background()))

	require.NoError(t, m.RecordReport(context.Background(), domain.UsageReport{PlanType: "pro"}))

	samples := m.TrailingWindow(1)
	require.Len(t, samples, 1)
	assert.Zero(t, samples[0].Timestamp)
}

func TestTrailingWindowSynthesizesPlaceholders(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	clock := &fakeClock{now: now.AddDate(0, 0, -2)}
	m := New(newMemStore(), clock, zerolog.Nop())
	require.NoError(t, m.Load(context.Background()))
	require.NoError(t, m.RecordReport(context.Background(), domain.UsageReport{FiveHour: window(0.5)}))

	clock.now = now
	samples := m.TrailingWindow(7)
	require.Len(t, samples, 7)

	// Ordered oldest to newest, ending today.
	assert.Equal(t, domain.DateKey(now.AddDate(0, 0, -6)), samples[0].DateKey)
	assert.Equal(t, domain.DateKey(now), samples[6].DateKey)

	recorded := samples[4]
	assert.Equal(t, 50, recorded.FiveHourPercent)
	for i, sample := range samples {
		if i == 4 {
			continue
		}
		assert.Zero(t, sample.FiveHourPercent)
		assert.Zero(t, sample.Timestamp)
	}
}

func TestTrailingWindowIsRepeatable(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	m := New(newMemStore(), &fakeClock{now: now}, zerolog.Nop())
	require.NoError(t, m.Load(context.Background()))

	first := m.TrailingWindow(5)
	second := m.TrailingWindow(5)
	assert.Equal(t, first, second)
}

func TestLoadPurgesSamplesPastRetention(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	store := newMemStore()
	old := now.AddDate(0, 0, -31)
	fresh := now.AddDate(0, 0, -5)
	seed := map[string]domain.HistorySample{
		domain.DateKey(old):   {DateKey: domain.DateKey(old), FiveHourPercent: 90, Timestamp: old},
		domain.DateKey(fresh): {DateKey: domain.DateKey(fresh), FiveHourPercent: 40, Timestamp: fresh},
	}
	require.NoError(t, store.Set(context.Background(), StateKey, seed))

	m := New(store, &fakeClock{now: now}, zerolog.Nop())
	require.NoError(t, m.Load(context.Background()))

	samples := m.TrailingWindow(31)
	for _, sample := range samples {
		if sample.DateKey == domain.DateKey(old) {
			assert.Zero(t, sample.FiveHourPercent, "sample past retention must be purged")
		}
		if sample.DateKey == domain.DateKey(fresh) {
			assert.Equal(t, 40, sample.FiveHourPercent)
		}
	}
}

func TestHistoryPersistsAcrossLoads(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local)
	store := newMemStore()
	m := New(store, &fakeClock{now: now}, zerolog.Nop())
	require.NoError(t, m.Load(context.Background()))
	require.NoError(t, m.RecordReport(context.Background(), domain.UsageReport{FiveHour: window(0.33)}))

	reloaded := New(store, &fakeClock{now: now}, zerolog.Nop())
	require.NoError(t, reloaded.Load(context.Background()))
	samples := reloaded.TrailingWindow(1)
	require.Len(t, samples, 1)
	assert.Equal(t, 33, samples[0].FiveHourPercent)
}
