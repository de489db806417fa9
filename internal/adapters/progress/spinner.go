package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/mangonel/internal/usecase"
)

// SpinnerProgress shows a spinner for long running stages in interactive
// sessions and plain lines otherwise
type SpinnerProgress struct {
	out         io.Writer
	interactive bool
	startTime   time.Time

	mu      sync.Mutex
	spinner *spinner.Spinner
}

// NewSpinnerProgress creates a new progress reporter
func NewSpinnerProgress(out io.Writer, interactive bool) *SpinnerProgress {
	return &SpinnerProgress{
		out:         out,
		interactive: interactive,
		startTime:   time.Now(),
	}
}

// OnProgress handles progress events
func (p *SpinnerProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if event.Stage == usecase.StageCompleted {
		p.stopSpinner()
		duration := time.Since(p.startTime)
		color.New(color.FgGreen).Fprintf(p.out, "✅ %s in %s\n", completedMessage(event), duration.Round(time.Millisecond))
		return
	}

	message := event.Message
	if event.Total > 0 {
		message = fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, event.Message)
	}

	if !p.interactive {
		if message != "" {
			fmt.Fprintln(p.out, message)
		}
		return
	}

	if !event.Spinner {
		p.stopSpinner()
		if message != "" {
			fmt.Fprintln(p.out, message)
		}
		return
	}

	if p.spinner == nil {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		p.spinner.Writer = p.out
		_ = p.spinner.Color("cyan", "bold")
	}
	p.spinner.Suffix = " " + message
	if !p.spinner.Active() {
		p.spinner.Start()
	}
}

// Info prints an info message
func (p *SpinnerProgress) Info(message string) {
	p.print(color.New(color.FgCyan), "ℹ️  "+message)
}

// Error prints an error message
func (p *SpinnerProgress) Error(message string) {
	p.print(color.New(color.FgRed), "❌ "+message)
}

func (p *SpinnerProgress) print(c *color.Color, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Stop spinner temporarily
	wasActive := p.spinner != nil && p.spinner.Active()
	if wasActive {
		p.spinner.Stop()
	}

	c.Fprintln(p.out, message)

	if wasActive {
		p.spinner.Start()
	}
}

func (p *SpinnerProgress) stopSpinner() {
	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
	}
}

func completedMessage(event usecase.ProgressEvent) string {
	if event.Message != "" {
		return event.Message
	}
	return "Done"
}

var _ usecase.ProgressSink = (*SpinnerProgress)(nil)
