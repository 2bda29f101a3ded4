package application

import (
	"time"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

// ExportPayload is the portable backup written by the export command. It
// round-trips through JSON, so field names are part of the format.
type ExportPayload struct {
	ExportTime    time.Time                 `json:"exportTime"`
	Version       string                    `json:"version"`
	Plan          domain.PlanID             `json:"plan"`
	PlanConfig    domain.PlanConfig         `json:"planConfig"`
	CurrentStatus domain.UsageSnapshot      `json:"currentStatus"`
	DailyStats    map[string]domain.DayStat `json:"dailyStats"`
}
