package unlike

import (
	"fmt"
	"time"
)

// Session is the controller's mutable state. Total is seeded from durable
// storage; everything else lives only as long as the process.
type Session struct {
	Total         int
	ErrorStreak   int
	BatchFailures int
	TotalFailures int
	Delay         time.Duration
	LastError     string
	StartedAt     time.Time
}

// State is the controller's run state
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Status is a point-in-time snapshot for status surfaces
type Status struct {
	State     State         `json:"state"`
	Total     int           `json:"total"`
	Failures  int           `json:"failures"`
	Delay     time.Duration `json:"delay"`
	LastError string        `json:"last_error,omitempty"`
	StartedAt time.Time     `json:"started_at,omitzero"`
	Elapsed   time.Duration `json:"elapsed"`
	CanStart  bool          `json:"can_start"`
	CanStop   bool          `json:"can_stop"`
}

// ProgressLine renders the progress status line
func (s Status) ProgressLine() string {
	return fmt.Sprintf("Unliked %d posts", s.Total)
}

// ErrorLine renders the error status line, or "" before the first failure
func (s Status) ErrorLine() string {
	if s.LastError == "" {
		return ""
	}
	return "Error: " + s.LastError
}

// Reason says why a run ended
type Reason string

const (
	ReasonExhausted Reason = "exhausted"
	ReasonCeiling   Reason = "ceiling"
	ReasonStopped   Reason = "stopped"
	ReasonCancelled Reason = "cancelled"
	ReasonError     Reason = "error"
)

// Summary describes a finished run
type Summary struct {
	Total     int           `json:"total"`
	Performed int           `json:"performed"`
	Failures  int           `json:"failures"`
	Elapsed   time.Duration `json:"elapsed"`
	Reason    Reason        `json:"reason"`
	Err       error         `json:"-"`
}
