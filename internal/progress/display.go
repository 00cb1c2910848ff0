package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// Display renders a generation run's lifecycle in the terminal: a spinner
// while waiting for the first output, streamed text while the provider is
// producing, and a final status mark.
type Display struct {
	capabilities TerminalCapabilities
	symbols      ProgressSymbols
	spinner      *spinner.Spinner
	streaming    bool
}

// NewDisplay creates a display with the given terminal capabilities
func NewDisplay(caps TerminalCapabilities) *Display {
	return &Display{
		capabilities: caps,
		symbols:      SelectSymbols(caps),
	}
}

// Start begins the waiting indicator with the given message
func (d *Display) Start(msg string) {
	d.streaming = false

	if d.capabilities.IsTTY {
		// TTY mode: Start spinner animation
		d.spinner = spinner.New(
			spinner.CharSets[d.symbols.SpinnerSet],
			100*time.Millisecond,
		)
		d.spinner.Writer = os.Stderr // Keep stdout clean for streamed output
		d.spinner.Suffix = " " + msg
		d.spinner.Start()
	} else {
		// Non-interactive mode: Just print the message
		fmt.Fprintln(os.Stderr, msg)
	}
}

// Stream writes a chunk of generation output to stdout. The first chunk
// stops the spinner so animation and text do not interleave.
func (d *Display) Stream(text string) {
	if !d.streaming {
		d.stopSpinner()
		d.streaming = true
	}
	fmt.Print(text)
}

// Complete stops the spinner and displays a success mark
func (d *Display) Complete(msg string) {
	d.stopSpinner()
	if d.streaming {
		fmt.Println()
	}
	mark := checkmark(d.symbols, d.capabilities.SupportsColor)
	fmt.Fprintf(os.Stderr, "%s %s\n", mark, msg)
}

// Fail stops the spinner and displays a failure mark with the error
func (d *Display) Fail(msg string, err error) {
	d.stopSpinner()
	if d.streaming {
		fmt.Println()
	}
	mark := failureMark(d.symbols, d.capabilities.SupportsColor)
	fmt.Fprintf(os.Stderr, "%s %s: %v\n", mark, msg, err)
}

func (d *Display) stopSpinner() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}
