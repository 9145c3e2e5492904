package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"unliker/pkg/unlike"
)

// TUI represents the terminal user interface. It doubles as an
// unlike.Reporter so controller callbacks land in the dashboard.
type TUI struct {
	program *tea.Program
}

// NewTUI creates a new TUI instance
func NewTUI(ctx context.Context, ctrl Controller, maxActions int) *TUI {
	model := NewModel(ctx, ctrl, maxActions)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	return &TUI{program: program}
}

// Run blocks until the user quits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

// Progress forwards a status update
func (t *TUI) Progress(s unlike.Status) {
	t.Send(StatusMsg{Status: s})
}

// Failure forwards a failed unlike
func (t *TUI) Failure(s unlike.Status, err error) {
	t.Send(FailureMsg{Status: s, Error: err})
}

// RateLimited forwards a rate limit pause
func (t *TUI) RateLimited(s unlike.Status, wait time.Duration) {
	t.Send(RateLimitMsg{Status: s, Wait: wait})
}

// Finished forwards the run summary
func (t *TUI) Finished(sum unlike.Summary) {
	t.Send(FinishedMsg{Summary: sum})
}
