package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"unliker/pkg/unlike"
)

const lineWidth = 100

// ProgressDisplay prints controller status to a terminal. In line mode the
// progress line is redrawn in place; in debug mode every update gets its
// own line so it interleaves cleanly with log output.
type ProgressDisplay struct {
	mu         sync.Mutex
	out        io.Writer
	maxActions int
	isDebug    bool
	drawn      bool
}

// NewProgressDisplay creates a display writing to stdout
func NewProgressDisplay(maxActions int, debug bool) *ProgressDisplay {
	return NewProgressDisplayWithWriter(os.Stdout, maxActions, debug)
}

// NewProgressDisplayWithWriter creates a display writing to out
func NewProgressDisplayWithWriter(out io.Writer, maxActions int, debug bool) *ProgressDisplay {
	return &ProgressDisplay{out: out, maxActions: maxActions, isDebug: debug}
}

// Progress redraws the progress line
func (p *ProgressDisplay) Progress(s unlike.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printProgress(s)
}

// Failure prints the error line below the progress line
func (p *ProgressDisplay) Failure(s unlike.Status, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	fmt.Fprintf(p.out, "%s %s\n", Red("✗"), Red(Fit(s.ErrorLine(), lineWidth)))
}

// Finished prints the run summary
func (p *ProgressDisplay) Finished(sum unlike.Summary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	fmt.Fprintf(p.out, "\n%s Unliked %d posts (%d this run)\n", Green("✓"), sum.Total, sum.Performed)
	fmt.Fprintf(p.out, "  %s %s after %.2f seconds\n", Dim("•"), reasonText(sum.Reason), sum.Elapsed.Seconds())
	if sum.Failures > 0 {
		fmt.Fprintf(p.out, "  %s %d unlikes failed\n", Dim("•"), sum.Failures)
	}
	fmt.Fprintln(p.out)
	PrintSummary(p.out, sum)
}

// RateLimited announces a rate limit pause before it starts
func (p *ProgressDisplay) RateLimited(s unlike.Status, wait time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.breakLine()
	fmt.Fprintf(p.out, "%s Rate limit reached, waiting %.0f seconds\n", Yellow("⚠"), wait.Seconds())
}

// printProgress prints the minimal progress line
func (p *ProgressDisplay) printProgress(s unlike.Status) {
	line := fmt.Sprintf("%s [%s] %d/%d • %.1f/min • %s • delay %s",
		Cyan(s.ProgressLine()),
		Bar(s.Total, p.maxActions, 20),
		s.Total,
		p.maxActions,
		Rate(s.Total, s.Elapsed),
		FormatDuration(s.Elapsed),
		s.Delay,
	)
	if s.Failures > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", s.Failures)))
	}

	if p.isDebug {
		fmt.Fprintln(p.out, line)
		return
	}
	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", lineWidth+20), line)
	p.drawn = true
}

// breakLine ends an in-place progress line so the next output starts clean
func (p *ProgressDisplay) breakLine() {
	if p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
}

func reasonText(r unlike.Reason) string {
	switch r {
	case unlike.ReasonExhausted:
		return "No more liked posts"
	case unlike.ReasonCeiling:
		return "Reached the action ceiling"
	case unlike.ReasonStopped:
		return "Stopped"
	case unlike.ReasonCancelled:
		return "Cancelled"
	case unlike.ReasonError:
		return "Failed"
	default:
		return string(r)
	}
}
