package domain

import "time"

// LimitType distinguishes why a limit episode was opened.
type LimitType string

const (
	LimitTypeNone          LimitType = ""
	LimitTypeRateLimit     LimitType = "rate_limit"
	LimitTypeQuotaExceeded LimitType = "quota_exceeded"
	LimitTypeUnknown       LimitType = "unknown"
)

// DayStat is the per-calendar-day usage bucket. Buckets are created lazily
// on the first event of a day and only removed by the retention sweep.
type DayStat struct {
	Messages  int       `json:"messages"`
	Limits    int       `json:"limits"`
	Timestamp time.Time `json:"timestamp"`
}

// UsageState is the persisted engine state: the session counters plus the
// normal/limited state machine fields.
type UsageState struct {
	IsLimited          bool               `json:"is_limited"`
	LimitDetectedAt    *time.Time         `json:"limit_detected_at,omitempty"`
	EstimatedResetTime *time.Time         `json:"estimated_reset_time,omitempty"`
	MessageCount       int                `json:"message_count"`
	SessionStartTime   time.Time          `json:"session_start_time"`
	DailyStats         map[string]DayStat `json:"daily_stats"`
	LimitType          LimitType          `json:"limit_type,omitempty"`
	LimitMessage       string             `json:"limit_message,omitempty"`
}

// RetentionWindow is how long per-day buckets are kept before the load-time
// sweep removes them.
const RetentionWindow = 30 * 24 * time.Hour

const dateKeyLayout = "2006-01-02"

// DateKey buckets a wall-clock instant into a local-time calendar date.
func DateKey(t time.Time) string {
	return t.Local().Format(dateKeyLayout)
}

func NewUsageState(now time.Time) UsageState {
	state := UsageState{
		SessionStartTime: now,
		DailyStats:       map[string]DayStat{},
	}
	state.EnsureDay(now)
	return state
}

// EnsureDay creates today's bucket if it does not exist yet.
func (s *UsageState) EnsureDay(now time.Time) {
	if s.DailyStats == nil {
		s.DailyStats = map[string]DayStat{}
	}
	key := DateKey(now)
	if _, ok := s.DailyStats[key]; !ok {
		s.DailyStats[key] = DayStat{Timestamp: now}
	}
}

// Today returns the bucket for the current calendar date, zero-valued when
// no events have been recorded yet.
func (s UsageState) Today(now time.Time) DayStat {
	return s.DailyStats[DateKey(now)]
}

// SweepOlderThan removes day buckets whose creation time predates the
// retention cutoff and reports how many were removed.
func (s *UsageState) SweepOlderThan(now time.Time, retention time.Duration) int {
	cutoff := now.Add(-retention)
	removed := 0
	for key, stat := range s.DailyStats {
		if stat.Timestamp.Before(cutoff) {
			delete(s.DailyStats, key)
			removed++
		}
	}
	return removed
}

// TrailingMessages sums recorded messages over the trailing window of
// calendar days ending today, inclusive.
func (s UsageState) TrailingMessages(now time.Time, days int) int {
	total := 0
	for i := 0; i < days; i++ {
		total += s.DailyStats[DateKey(now.AddDate(0, 0, -i))].Messages
	}
	return total
}
