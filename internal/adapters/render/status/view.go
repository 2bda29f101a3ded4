package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

type RenderOptions struct {
	Now        time.Time
	Plan       domain.PlanConfig
	Provenance string
	Report     *domain.UsageReport
	History    []domain.HistorySample
}

const barWidth = 24

// View renders the snapshot without a bubbletea program, for callers
// that already run inside one.
func View(snapshot domain.UsageSnapshot, opts RenderOptions) string {
	return renderView(snapshot, opts, newStyles())
}

func renderView(snapshot domain.UsageSnapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Claude Usage Monitor"),
		s.plan.Render(planTitle(opts.Plan, opts.Provenance)),
		stateLine(snapshot, s),
	}

	lines = append(lines, s.section.Render(sessionSection(snapshot, opts.Plan, s)))

	if opts.Report != nil && opts.Report.HasWindows() {
		lines = append(lines, s.section.Render(reportSection(*opts.Report, opts.Now, s)))
	}

	if len(opts.History) > 0 {
		lines = append(lines, s.section.Render(historySection(opts.History, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func planTitle(plan domain.PlanConfig, provenance string) string {
	name := plan.DisplayName
	if name == "" {
		name = string(plan.ID)
	}
	if provenance == "" {
		return fmt.Sprintf("Plan: %s", name)
	}
	return fmt.Sprintf("Plan: %s (%s)", name, provenance)
}

func stateLine(snapshot domain.UsageSnapshot, s styles) string {
	if !snapshot.IsLimited {
		return s.detail.Render("Status: normal")
	}

	label := "limited"
	if snapshot.LimitType != domain.LimitTypeNone && snapshot.LimitType != domain.LimitTypeUnknown {
		label = fmt.Sprintf("limited (%s)", snapshot.LimitType)
	}
	line := s.warning.Render("Status: " + label)
	if snapshot.FormattedRemaining != "" {
		line += s.limitMeta.Render(fmt.Sprintf("  %s until %s", snapshot.FormattedRemaining, snapshot.ResetTimeDisplay))
	}
	return line
}

func sessionSection(snapshot domain.UsageSnapshot, plan domain.PlanConfig, s styles) string {
	lines := []string{
		s.detail.Render(fmt.Sprintf("Session: %d messages over %s", snapshot.MessageCount, snapshot.SessionDurationDisplay)),
		s.detail.Render(fmt.Sprintf("Today: %d messages, %d limit hits", snapshot.TodayMessages, snapshot.TodayLimits)),
		usageLine("Daily ", snapshot.DailyPercentage, string(snapshot.DailySeverity), plan.DailyMessageCap, s),
		usageLine("Weekly", snapshot.WeeklyPercentage, string(snapshot.WeeklySeverity), plan.WeeklyMessageCap, s),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func usageLine(label string, percent int, severity string, limit int, s styles) string {
	bar := renderProgressBar(percent, barWidth, s.severity(severity), s)
	meta := s.severity(severity).Render(fmt.Sprintf("%3d%%", percent))
	capText := s.limitMeta.Render(fmt.Sprintf("of ~%d", limit))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.limitKey.Render(label+":"),
		" ",
		bar,
		" ",
		meta,
		" ",
		capText,
	)
}

func reportSection(report domain.UsageReport, now time.Time, s styles) string {
	lines := []string{s.header.Render("usage windows" + fetchedSuffix(report.FetchedAt, now))}

	for _, row := range []struct {
		label  string
		window *domain.UsageWindow
	}{
		{"5h  ", report.FiveHour},
		{"7d  ", report.SevenDay},
		{"opus", report.SevenDayOpus},
	} {
		if row.window == nil {
			continue
		}
		percent := row.window.UsedPercent()
		severity := string(domain.SeverityFor(percent))
		line := lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.limitKey.Render(row.label+":"),
			" ",
			renderProgressBar(percent, barWidth, s.severity(severity), s),
			" ",
			s.severity(severity).Render(fmt.Sprintf("%3d%%", percent)),
			" ",
			s.limitMeta.Render(resetSuffix(row.window.ResetsAt, now)),
		)
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func historySection(samples []domain.HistorySample, s styles) string {
	lines := []string{s.header.Render(fmt.Sprintf("history (last %d days)", len(samples)))}

	for _, sample := range samples {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.limitKey.Render(sample.DateKey),
			"  ",
			s.detail.Render(fmt.Sprintf("5h %3d%%  7d %3d%%  opus %3d%%",
				sample.FiveHourPercent, sample.SevenDayPercent, sample.SevenDayOpusPercent)),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProgressBar(percent, width int, fill lipgloss.Style, s styles) string {
	if width <= 0 {
		return ""
	}

	used := percent
	if used < 0 {
		used = 0
	}
	if used > 100 {
		used = 100
	}

	filled := int(math.Round(float64(width) * float64(used) / 100))
	if filled > width {
		filled = width
	}
	empty := width - filled

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		fill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", empty)),
		s.barBracket.Render("]"),
	)
}

func fetchedSuffix(fetchedAt, now time.Time) string {
	if fetchedAt.IsZero() {
		return ""
	}
	if now.IsZero() {
		return fmt.Sprintf(" (as of %s)", fetchedAt.Format("15:04:05"))
	}
	age := now.Sub(fetchedAt)
	if age < time.Second {
		return " (just fetched)"
	}
	return fmt.Sprintf(" (fetched %s ago)", domain.FormatDuration(age))
}

func resetSuffix(resetsAt, now time.Time) string {
	if resetsAt.IsZero() {
		return ""
	}
	if now.IsZero() || !resetsAt.After(now) {
		return fmt.Sprintf("resets %s", resetsAt.Format("15:04"))
	}
	return fmt.Sprintf("resets in %s", domain.FormatDuration(resetsAt.Sub(now)))
}
