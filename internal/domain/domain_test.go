package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsagePercentClamping(t *testing.T) {
	tests := []struct {
		name  string
		used  int
		limit int
		want  int
	}{
		{name: "zero used", used: 0, limit: 150, want: 0},
		{name: "half of pro daily cap", used: 75, limit: 150, want: 50},
		{name: "exactly at cap", used: 150, limit: 150, want: 100},
		{name: "over cap clamps to 100", used: 400, limit: 150, want: 100},
		{name: "rounds to nearest", used: 1, limit: 3, want: 33},
		{name: "negative used clamps to 0", used: -5, limit: 150, want: 0},
		{name: "zero cap reads as fully used", used: 1, limit: 0, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsagePercent(tt.used, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestSeverityThresholds(t *testing.T) {
	assert.Equal(t, SeverityLow, SeverityFor(0))
	assert.Equal(t, SeverityLow, SeverityFor(49))
	assert.Equal(t, SeverityMedium, SeverityFor(50))
	assert.Equal(t, SeverityMedium, SeverityFor(79))
	assert.Equal(t, SeverityHigh, SeverityFor(80))
	assert.Equal(t, SeverityHigh, SeverityFor(100))
}

func TestFormatDurationPrecisionTiers(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "hours and minutes", d: 2*time.Hour + 15*time.Minute, want: "2h 15m"},
		{name: "minutes and seconds", d: 5*time.Minute + 30*time.Second, want: "5m 30s"},
		{name: "seconds only", d: 45 * time.Second, want: "45s"},
		{name: "expired", d: 0, want: "recovering shortly"},
		{name: "negative", d: -time.Minute, want: "recovering shortly"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestNewUsageStateHasTodayBucket(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	state := NewUsageState(now)

	stat, ok := state.DailyStats[DateKey(now)]
	require.True(t, ok)
	assert.Equal(t, 0, stat.Messages)
	assert.Equal(t, 0, stat.Limits)
	assert.Equal(t, now, stat.Timestamp)
	assert.Equal(t, now, state.SessionStartTime)
}

func TestSweepRemovesOnlyStaleBuckets(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	state := NewUsageState(now)
	stale := now.Add(-RetentionWindow - time.Hour)
	fresh := now.AddDate(0, 0, -5)
	state.DailyStats[DateKey(stale)] = DayStat{Messages: 3, Timestamp: stale}
	state.DailyStats[DateKey(fresh)] = DayStat{Messages: 7, Timestamp: fresh}

	removed := state.SweepOlderThan(now, RetentionWindow)

	assert.Equal(t, 1, removed)
	assert.NotContains(t, state.DailyStats, DateKey(stale))
	assert.Contains(t, state.DailyStats, DateKey(fresh))
	assert.Contains(t, state.DailyStats, DateKey(now))
}

func TestTrailingMessagesRollingWindow(t *testing.T) {
	// The window is a rolling trailing one (today plus the previous six
	// days), not a Mon-Sun calendar week. Earlier versions of the panel
	// disagreed on this; the rolling definition is the one implemented.
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.Local)
	state := NewUsageState(now)
	for i := 0; i < 10; i++ {
		day := now.AddDate(0, 0, -i)
		state.DailyStats[DateKey(day)] = DayStat{Messages: 10, Timestamp: day}
	}

	assert.Equal(t, 70, state.TrailingMessages(now, 7))
	assert.Equal(t, 10, state.TrailingMessages(now, 1))
}

func TestUsageStateJSONRoundTrip(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	reset := now.Add(5 * time.Hour)
	state := UsageState{
		IsLimited:          true,
		LimitDetectedAt:    &now,
		EstimatedResetTime: &reset,
		MessageCount:       42,
		SessionStartTime:   now.Add(-time.Hour),
		DailyStats: map[string]DayStat{
			DateKey(now): {Messages: 12, Limits: 1, Timestamp: now},
		},
		LimitType:    LimitTypeRateLimit,
		LimitMessage: "You've reached your usage limit",
	}

	data, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded UsageState
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, state, decoded)
}

func TestCatalogUnknownIDFallsBackToFree(t *testing.T) {
	catalog := DefaultCatalog()

	row := catalog.Get(PlanID("platinum"))
	assert.Equal(t, PlanFree, row.ID)

	pro := catalog.Get(PlanPro)
	assert.Equal(t, 150, pro.DailyMessageCap)
	assert.Equal(t, 1000, pro.WeeklyMessageCap)
	assert.Equal(t, 5, pro.ResetPeriodHours)

	assert.False(t, catalog.Known(PlanID("platinum")))
	assert.True(t, catalog.Known(PlanMax))
}

func TestUsageWindowUsedPercent(t *testing.T) {
	assert.Equal(t, 76, UsageWindow{Utilization: 0.756}.UsedPercent())
	assert.Equal(t, 0, UsageWindow{Utilization: -0.2}.UsedPercent())
	assert.Equal(t, 100, UsageWindow{Utilization: 1.4}.UsedPercent())
}
