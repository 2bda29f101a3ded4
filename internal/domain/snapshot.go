package domain

import (
	"fmt"
	"math"
	"time"
)

// Severity buckets a usage percentage for presentation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func SeverityFor(percent int) Severity {
	switch {
	case percent < 50:
		return SeverityLow
	case percent < 80:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// UsageSnapshot is the derived read-only status view handed to the
// presentation layer. It is recomputed on demand and never persisted.
type UsageSnapshot struct {
	IsLimited              bool      `json:"is_limited"`
	RemainingTimeMs        int64     `json:"remaining_time_ms"`
	FormattedRemaining     string    `json:"formatted_remaining"`
	ResetTimeDisplay       string    `json:"reset_time_display"`
	MessageCount           int       `json:"message_count"`
	TodayMessages          int       `json:"today_messages"`
	TodayLimits            int       `json:"today_limits"`
	SessionDurationDisplay string    `json:"session_duration_display"`
	DailyPercentage        int       `json:"daily_percentage"`
	WeeklyPercentage       int       `json:"weekly_percentage"`
	DailySeverity          Severity  `json:"daily_severity"`
	WeeklySeverity         Severity  `json:"weekly_severity"`
	PlanID                 PlanID    `json:"plan_id"`
	LimitType              LimitType `json:"limit_type,omitempty"`
	LimitMessage           string    `json:"limit_message,omitempty"`
}

// UsagePercent converts used messages against a cap into a rounded
// percentage clamped to [0, 100]. A non-positive cap reads as fully used.
func UsagePercent(used, limit int) int {
	if limit <= 0 {
		return 100
	}
	if used <= 0 {
		return 0
	}
	percent := int(math.Round(float64(used) / float64(limit) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

// FormatDuration renders a remaining duration with coarse precision:
// hours+minutes above an hour, minutes+seconds above a minute, seconds
// below that.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "recovering shortly"
	}
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)
	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}

// FormatClock renders an instant for the reset-time display.
func FormatClock(t time.Time) string {
	return t.Local().Format("01-02 15:04:05")
}
