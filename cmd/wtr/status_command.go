package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newStatusCommand() *cobra.Command {
	var watch bool
	var intervalSeconds int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show an aggregate of all worktrees, once or continuously",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStatus(watch, intervalSeconds)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Refresh the aggregate on a fixed interval")
	cmd.Flags().IntVar(&intervalSeconds, "interval", 0, "Refresh interval in seconds (default from config)")
	return cmd
}

func runStatus(watch bool, intervalSeconds int) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !watch {
		agg, err := a.reporter().Collect()
		if err != nil {
			return err
		}
		fmt.Print(renderAggregate(agg))
		return nil
	}

	interval := a.cfg.WatchInterval()
	if intervalSeconds > 0 {
		interval = time.Duration(intervalSeconds) * time.Second
	}
	p := tea.NewProgram(newWatchModel(a, interval))
	_, err = p.Run()
	return err
}

type watchRefreshMsg struct {
	agg StatusAggregate
	err error
}

type watchTickMsg struct{}

// watchModel drives the poll loop: snapshot, render, sleep, repeat. A new
// refresh is never started before the previous one has delivered its result,
// so at most one snapshot is in flight.
type watchModel struct {
	app        *app
	interval   time.Duration
	spinner    spinner.Model
	agg        StatusAggregate
	err        error
	refreshing bool
	loaded     bool
}

func newWatchModel(a *app, interval time.Duration) watchModel {
	return watchModel{
		app:      a,
		interval: interval,
		spinner:  newSpinner(),
	}
}

func (m watchModel) refreshCmd() tea.Cmd {
	reporter := m.app.reporter()
	return func() tea.Msg {
		agg, err := reporter.Collect()
		return watchRefreshMsg{agg: agg, err: err}
	}
}

func (m watchModel) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return watchTickMsg{}
	})
}

func (m watchModel) Init() tea.Cmd {
	m.refreshing = true
	return tea.Batch(m.spinner.Tick, m.refreshCmd())
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil
	case watchRefreshMsg:
		m.refreshing = false
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.agg = msg.agg
		}
		return m, m.scheduleTick()
	case watchTickMsg:
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, m.refreshCmd()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m watchModel) View() string {
	if !m.loaded {
		return m.spinner.View() + " collecting worktree status...\n"
	}
	view := renderAggregate(m.agg)
	if m.err != nil {
		view += warningStyle.Render("refresh failed: "+m.err.Error()) + "\n"
	}
	view += dimStyle.Render(fmt.Sprintf("refreshed %s · every %s · q to quit", m.agg.CollectedAt.Format("15:04:05"), m.interval)) + "\n"
	return view
}
