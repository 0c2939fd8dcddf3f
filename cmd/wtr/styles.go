package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	branchStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	activeBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mergedBadge   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	staleBadge    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	orphanedBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

func statusBadge(status StatusKind) string {
	switch status {
	case StatusMerged:
		return mergedBadge.Render("merged")
	case StatusStale:
		return staleBadge.Render("stale")
	case StatusOrphaned:
		return orphanedBadge.Render("orphaned")
	default:
		return activeBadge.Render("active")
	}
}

func renderReasons(cls Classification) string {
	if len(cls.Reasons) <= 1 {
		return statusBadge(cls.Status)
	}
	parts := make([]string, 0, len(cls.Reasons))
	for _, reason := range cls.Reasons {
		parts = append(parts, statusBadge(reason))
	}
	return strings.Join(parts, "+")
}

func renderAge(when time.Time) string {
	if when.IsZero() {
		return dimStyle.Render("unknown")
	}
	return humanize.Time(when)
}

func renderAheadBehind(ahead, behind int) string {
	return fmt.Sprintf("↑%d ↓%d", ahead, behind)
}

func renderDirty(dirty DirtyState) string {
	if !dirty.IsDirty() {
		return dimStyle.Render("clean")
	}
	return warningStyle.Render(dirty.String())
}

// pathLink renders a worktree path as a terminal hyperlink when stdout is a
// TTY that supports it.
func pathLink(path string) string {
	if !stdoutIsTTY() {
		return path
	}
	return termenv.Hyperlink("file://"+path, path)
}

func stdoutIsTTY() bool {
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func stderrIsTTY() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func renderAggregate(agg StatusAggregate) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("worktrees vs %s", agg.Trunk)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("total %d · dirty %d · %s\n", agg.Total, agg.DirtyCount, renderAheadBehind(agg.AheadTotal, agg.BehindTotal)))
	for _, cls := range agg.Worktrees {
		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			branchStyle.Render(cls.Record.Branch),
			renderReasons(cls),
			renderAheadBehind(cls.Ahead, cls.Behind),
			renderDirty(cls.Dirty),
			dimStyle.Render(renderAge(cls.LastActivity)),
		)
		if cls.Remote != nil {
			line += "  " + dimStyle.Render(fmt.Sprintf("%s %s", cls.Remote.Ref, renderAheadBehind(cls.Remote.Ahead, cls.Remote.Behind)))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, warning := range agg.Warnings {
		b.WriteString(warningStyle.Render("warning: malformed listing line: " + warning))
		b.WriteString("\n")
	}
	return b.String()
}
