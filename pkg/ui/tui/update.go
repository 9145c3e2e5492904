package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"unliker/pkg/unlike"
)

// Message types for the TUI

// StatusMsg carries a progress update from the controller
type StatusMsg struct {
	Status unlike.Status
}

// FailureMsg is sent when an unlike fails
type FailureMsg struct {
	Status unlike.Status
	Error  error
}

// FinishedMsg is sent when a run ends
type FinishedMsg struct {
	Summary unlike.Summary
}

// RateLimitMsg is sent before the loop pauses for the rate limit
type RateLimitMsg struct {
	Status unlike.Status
	Wait   time.Duration
}

// TickMsg is sent periodically to update the UI
type TickMsg time.Time

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ceiling.Width = max(10, (m.width-4)/2-12)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		// Regular refresh so elapsed time and state stay current
		m.status = m.ctrl.Status()
		return m, tickCmd()

	case StatusMsg:
		m.status = msg.Status
		return m, nil

	case FailureMsg:
		m.status = msg.Status
		m.AddLogMessage("ERROR", msg.Status.ErrorLine())
		return m, nil

	case FinishedMsg:
		sum := msg.Summary
		m.summary = &sum
		m.status = m.ctrl.Status()
		level := "SUCCESS"
		if sum.Reason == unlike.ReasonError {
			level = "ERROR"
		}
		m.AddLogMessage(level, fmt.Sprintf("Finished (%s): unliked %d posts, %d this run in %.2fs",
			sum.Reason, sum.Total, sum.Performed, sum.Elapsed.Seconds()))
		return m, nil

	case RateLimitMsg:
		m.status = msg.Status
		m.AddLogMessage("WARN", fmt.Sprintf("Rate limit reached, waiting %.0f seconds", msg.Wait.Seconds()))
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		if m.status.CanStop {
			m.stop()
		}
		m.quitting = true
		return m, tea.Quit

	case "s", "S":
		m.start()
		return m, nil

	case "x", "X":
		m.stop()
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

// Commands

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*500, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
