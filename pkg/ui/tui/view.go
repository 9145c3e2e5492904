package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"unliker/pkg/ui"
	"unliker/pkg/unlike"
)

// View renders the entire TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderLogo())

	// Main content area with two columns
	mainContent := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftColumn(),
		"  ",
		m.renderRightColumn(),
	)
	sections = append(sections, mainContent)

	if m.showHelp {
		sections = append(sections, m.renderHelp())
	} else {
		sections = append(sections, helpStyle.Render("s start • x stop • q quit • ? help"))
	}

	return baseStyle.Width(m.width).Height(m.height).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...),
	)
}

func (m *Model) renderLogo() string {
	logo := `
╔══════════════════════════════════════════════╗
║  U N L I K E R  ·  likes timeline cleanup    ║
╚══════════════════════════════════════════════╝`

	return logoStyle.Width(m.width).Render(logo)
}

func (m *Model) columnWidth() int {
	return (m.width - 4) / 2
}

func (m *Model) renderLeftColumn() string {
	width := m.columnWidth()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatusPanel(width),
		m.renderControlsPanel(width),
	)
}

func (m *Model) renderRightColumn() string {
	width := m.columnWidth()
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderStatsPanel(width),
		m.renderLogsPanel(width),
	)
}

// renderStatusPanel shows the two status lines and the ceiling bar
func (m *Model) renderStatusPanel(width int) string {
	title := titleStyle.Render(" STATUS ")

	state := statsValueStyle.Render("IDLE")
	switch m.status.State {
	case unlike.StateRunning:
		state = m.spinner.View() + " " + successStyle.Render("RUNNING")
	case unlike.StateStopping:
		state = m.spinner.View() + " " + warningStyle.Render("STOPPING")
	}

	errLine := m.status.ErrorLine()
	if errLine == "" {
		errLine = logMessageStyle.Render("No errors")
	} else {
		errLine = errorStyle.Render(ui.Fit(errLine, width-6))
	}

	content := []string{
		state,
		"",
		successStyle.Render(m.status.ProgressLine()),
		errLine,
		"",
		fmt.Sprintf("%s %s", m.ceiling.ViewAs(m.ceilingRatio()),
			statsValueStyle.Render(fmt.Sprintf("%d/%d", m.status.Total, m.maxActions))),
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(content, "\n")),
	)
}

// renderControlsPanel shows the start and stop triggers with their enabled
// state
func (m *Model) renderControlsPanel(width int) string {
	title := titleStyle.Render(" CONTROLS ")

	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		buttonRender("[s] Start", m.status.CanStart),
		"  ",
		buttonRender("[x] Stop", m.status.CanStop),
	)

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, buttons),
	)
}

func (m *Model) renderStatsPanel(width int) string {
	title := titleStyle.Render(" SESSION ")

	elapsed := m.status.Elapsed
	performed := 0
	if m.summary != nil && m.status.State == unlike.StateIdle {
		elapsed = m.summary.Elapsed
		performed = m.summary.Performed
	}

	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(elapsed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Delay:"), GetDelayStyle(m.status.Delay.Milliseconds()).Render(m.status.Delay.String())),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Failures:"), statsValueStyle.Render(fmt.Sprintf("%d", m.status.Failures))),
	}
	if m.summary != nil && m.status.State == unlike.StateIdle {
		stats = append(stats,
			fmt.Sprintf("%s %s", statsLabelStyle.Render("Last run:"),
				statsValueStyle.Render(fmt.Sprintf("%d unliked, %s", performed, m.summary.Reason))))
	}

	return panelStyle.Width(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, stats...)),
	)
}

// renderLogsPanel renders the recent activity
func (m *Model) renderLogsPanel(width int) string {
	title := titleStyle.Render(" ACTIVITY ")

	start := len(m.logMessages) - 10
	if start < 0 {
		start = 0
	}

	var logs []string
	for _, log := range m.logMessages[start:] {
		timestamp := logTimestampStyle.Render(log.Time.Format("15:04:05"))
		level := lipgloss.NewStyle().Foreground(log.Color).Bold(true).Render(fmt.Sprintf("[%-7s]", log.Level))
		message := logMessageStyle.Render(ui.Fit(log.Message, max(10, width-25)))

		logs = append(logs, fmt.Sprintf("%s %s %s", timestamp, level, message))
	}

	content := strings.Join(logs, "\n")
	if content == "" {
		content = lipgloss.NewStyle().Foreground(dimWhite).Render("No activity yet...")
	}

	logsHeight := m.height - 24
	if logsHeight < 5 {
		logsHeight = 5
	}

	return panelStyle.Width(width).Height(logsHeight).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, content),
	)
}

func (m *Model) renderHelp() string {
	help := `
  Controls:
    s        - Start unliking (disabled while running)
    x        - Stop after the current batch (disabled while idle)
    q        - Stop and quit
    ctrl+l   - Clear activity
    ?        - Toggle this help

  Status Indicators:
    ` + successStyle.Render("Green") + `    - Running / healthy pacing
    ` + warningStyle.Render("Orange") + `   - Stopping / backing off
    ` + errorStyle.Render("Red") + `      - Last error / heavy backoff
`

	return panelStyle.Width(m.width).Render(help)
}

// formatDuration formats a duration as a clock
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
