package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"fantiadl/pkg/ui"
)

// View renders the dashboard
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderProgressPanel(),
		m.renderStatsPanel(),
		m.renderLogsPanel(),
	}
	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("q quit · ? help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	status := m.spinner.View() + " crawling"
	if m.done {
		status = successStyle.Render("finished")
		if m.err != nil {
			status = errorStyle.Render("aborted")
		}
	}
	return headerStyle.Render(fmt.Sprintf("fantiadl · fan club %s", m.fanClubID)) + "  " + status
}

// renderProgressPanel shows one bar per crawl level
func (m *Model) renderProgressPanel() string {
	lines := []string{titleStyle.Render(" PROGRESS ")}

	for _, stage := range Stages {
		state, ok := m.stages[stage]
		position := "-"
		if ok {
			position = fmt.Sprintf("%d/%d", state.Index, state.Total)
		}
		bar := m.bars[stage]
		lines = append(lines, fmt.Sprintf("%s %s %s",
			labelStyle.Render(fmt.Sprintf("%-6s", stage)),
			bar.ViewAs(state.Fraction()),
			valueStyle.Render(position),
		))
		if ok && state.Target != "" {
			lines = append(lines, "       "+targetStyle.Render(truncate(state.Target, m.width-12)))
		}
	}

	return panelStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderStatsPanel() string {
	elapsed := time.Since(m.startTime)
	stats := []string{
		titleStyle.Render(" STATS "),
		fmt.Sprintf("%s %s", labelStyle.Render("Elapsed:"), valueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", labelStyle.Render("Images:"), valueStyle.Render(fmt.Sprintf("%d", m.images))),
		fmt.Sprintf("%s %s", labelStyle.Render("Size:"), valueStyle.Render(ui.FormatBytes(m.totalBytes))),
	}
	if m.lastSaved != "" {
		stats = append(stats, fmt.Sprintf("%s %s", labelStyle.Render("Last:"), targetStyle.Render(truncate(m.lastSaved, m.width-12))))
	}
	return panelStyle.Width(m.width - 2).Render(strings.Join(stats, "\n"))
}

func (m *Model) renderLogsPanel() string {
	lines := []string{titleStyle.Render(" LOG ")}

	start := len(m.logMessages) - 8
	if start < 0 {
		start = 0
	}
	for _, log := range m.logMessages[start:] {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			logTimeStyle.Render(log.Time.Format("15:04:05")),
			lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level)),
			truncate(log.Message, m.width-25),
		))
	}
	if len(lines) == 1 {
		lines = append(lines, targetStyle.Render("No messages yet"))
	}

	return panelStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderHelp() string {
	help := `  q        stop the crawl and quit
  ctrl+l   clear the log panel
  ?        toggle this help`
	return panelStyle.Width(m.width - 2).Render(help)
}

func truncate(s string, max int) string {
	if max < 4 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatDuration formats a duration as mm:ss or hh:mm:ss
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
