package domain

import "time"

// HistorySample is one recorded daily utilization reading taken from the
// authoritative usage endpoint. At most one sample exists per calendar
// date; a later reading of the same day overwrites the earlier one.
type HistorySample struct {
	DateKey             string    `json:"date_key"`
	FiveHourPercent     int       `json:"five_hour_percent"`
	SevenDayPercent     int       `json:"seven_day_percent"`
	SevenDayOpusPercent int       `json:"seven_day_opus_percent"`
	Timestamp           time.Time `json:"timestamp"`
}
