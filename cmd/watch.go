package cmd

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	statusadapter "github.com/weiruankeji2025/claude-usage-monitor/internal/adapters/render/status"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/application"
	"github.com/weiruankeji2025/claude-usage-monitor/internal/domain"
)

func newWatchCmd(app *app) *cobra.Command {
	var interval time.Duration
	var historyDays int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live usage view, refreshed on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval == 0 {
				interval = app.cfg.WatchInterval
			}

			model := watchModel{
				app:         app,
				ctx:         cmd.Context(),
				interval:    application.WaitInterval(interval),
				historyDays: historyDays,
			}

			p := tea.NewProgram(model, tea.WithContext(cmd.Context()), tea.WithOutput(cmd.OutOrStdout()))
			_, err := p.Run()
			return err
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default from config, 1s floor)")
	cmd.Flags().IntVar(&historyDays, "history", 0, "Include a trailing history window of N days")

	return cmd
}

type watchTickMsg struct{}

type watchSnapshotMsg struct {
	snapshot domain.UsageSnapshot
	opts     statusadapter.RenderOptions
	err      error
}

type watchModel struct {
	app         *app
	ctx         context.Context
	interval    time.Duration
	historyDays int

	view string
	err  error
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.refresh, m.tick())
}

func (m watchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return watchTickMsg{}
	})
}

func (m watchModel) refresh() tea.Msg {
	snapshot, err := m.app.service.Status(m.ctx)
	if err != nil {
		return watchSnapshotMsg{err: err}
	}

	_, planConfig, provenance := m.app.service.Plan(m.ctx)
	opts := statusadapter.RenderOptions{
		Now:        m.app.now(),
		Plan:       planConfig,
		Provenance: provenance,
	}
	if report, ok := m.app.service.LastReport(); ok {
		opts.Report = &report
	}
	if m.historyDays > 0 {
		opts.History = m.app.service.History(m.historyDays)
	}

	return watchSnapshotMsg{snapshot: snapshot, opts: opts}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refresh
		}
		return m, nil
	case watchTickMsg:
		return m, tea.Batch(m.refresh, m.tick())
	case watchSnapshotMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.view = statusadapter.View(msg.snapshot, msg.opts)
		return m, nil
	default:
		return m, nil
	}
}

func (m watchModel) View() string {
	if m.err != nil {
		return "error: " + m.err.Error() + "\n"
	}
	if m.view == "" {
		return "loading...\n"
	}
	return m.view + "\n\npress q to quit, r to refresh\n"
}
