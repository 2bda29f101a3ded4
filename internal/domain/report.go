package domain

import (
	"math"
	"time"
)

// UsageWindow is one rate-limit window from the authoritative usage
// endpoint: a consumed fraction and the instant the window resets.
type UsageWindow struct {
	Utilization float64   `json:"utilization"`
	ResetsAt    time.Time `json:"resets_at"`
}

// UsedPercent converts the 0..1 utilization fraction into a clamped
// rounded percentage.
func (w UsageWindow) UsedPercent() int {
	percent := int(math.Round(w.Utilization * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// UsageReport is the normalized result of an authoritative usage fetch.
// All window fields are optional; the endpoint is treated as an opaque
// document with whatever subset it chooses to return.
type UsageReport struct {
	PlanType     string       `json:"plan_type,omitempty"`
	FiveHour     *UsageWindow `json:"five_hour,omitempty"`
	SevenDay     *UsageWindow `json:"seven_day,omitempty"`
	SevenDayOpus *UsageWindow `json:"seven_day_opus,omitempty"`
	FetchedAt    time.Time    `json:"fetched_at"`
}

// HasWindows reports whether the report carries any utilization counters.
func (r UsageReport) HasWindows() bool {
	return r.FiveHour != nil || r.SevenDay != nil || r.SevenDayOpus != nil
}
