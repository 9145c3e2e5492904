package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"unliker/pkg/unlike"
)

// Controller is the part of the unlike controller the dashboard drives
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	Status() unlike.Status
}

// Model represents the TUI model
type Model struct {
	// UI components
	spinner spinner.Model
	ceiling progress.Model

	// Controller state
	ctrl       Controller
	ctx        context.Context
	status     unlike.Status
	summary    *unlike.Summary
	maxActions int

	// UI state
	width          int
	height         int
	showHelp       bool
	quitting       bool
	logMessages    []LogMessage
	maxLogMessages int
	now            func() time.Time
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// NewModel creates a dashboard over ctrl. ctx bounds runs started with the
// start key.
func NewModel(ctx context.Context, ctrl Controller, maxActions int) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(neonCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return &Model{
		spinner:        s,
		ceiling:        p,
		ctrl:           ctrl,
		ctx:            ctx,
		status:         ctrl.Status(),
		maxActions:     maxActions,
		maxLogMessages: 50,
		now:            time.Now,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// Status returns the last status the dashboard rendered
func (m *Model) Status() unlike.Status {
	return m.status
}

// start fires the start trigger
func (m *Model) start() {
	if !m.status.CanStart {
		return
	}
	if err := m.ctrl.Start(m.ctx); err != nil {
		m.AddLogMessage("WARN", "Start ignored: "+err.Error())
		return
	}
	m.summary = nil
	m.status = m.ctrl.Status()
	m.AddLogMessage("INFO", "Unliking started")
}

// stop fires the stop trigger
func (m *Model) stop() {
	if !m.status.CanStop {
		return
	}
	if err := m.ctrl.Stop(); err != nil {
		m.AddLogMessage("WARN", "Stop ignored: "+err.Error())
		return
	}
	m.status = m.ctrl.Status()
	m.AddLogMessage("WARN", "Stop requested, finishing current batch")
}

// AddLogMessage adds a log message
func (m *Model) AddLogMessage(level, message string) {
	color := dimWhite
	switch level {
	case "ERROR":
		color = lipgloss.Color("#FF0000")
	case "WARN":
		color = neonOrange
	case "SUCCESS":
		color = neonGreen
	case "INFO":
		color = neonCyan
	}

	m.logMessages = append(m.logMessages, LogMessage{
		Time:    m.now(),
		Level:   level,
		Message: message,
		Color:   color,
	})

	// Keep only the last N messages
	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// ceilingRatio is total/maxActions clamped to [0,1]
func (m *Model) ceilingRatio() float64 {
	if m.maxActions <= 0 {
		return 0
	}
	r := float64(m.status.Total) / float64(m.maxActions)
	if r > 1 {
		r = 1
	}
	return r
}
