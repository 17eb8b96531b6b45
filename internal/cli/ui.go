//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This decouples DisplayProgress from a specific spinner implementation.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState counts finished documents of a batch.
type ProgressState struct {
	done   int
	failed int
	total  int
}

// NewProgressState creates a progress state for total documents.
func NewProgressState(total int) *ProgressState {
	return &ProgressState{total: total}
}

// Record counts one finished document.
func (ps *ProgressState) Record(failed bool) {
	ps.done++
	if failed {
		ps.failed++
	}
}

// Fraction returns the finished share of the batch (0.0 to 1.0).
func (ps *ProgressState) Fraction() float64 {
	if ps.total == 0 {
		return 0.0
	}
	return float64(ps.done) / float64(ps.total)
}

// Suffix renders the spinner text for the current state.
func (ps *ProgressState) Suffix() string {
	s := fmt.Sprintf(" %s %d/%d documents", progressBar(ps.Fraction(), ProgressBarWidth), ps.done, ps.total)
	if ps.failed > 0 {
		s += fmt.Sprintf(" (%d failed)", ps.failed)
	}
	return s
}

// DisplayProgress shows a spinner with a progress bar while documents of a
// batch finish. It consumes results until the channel is closed and then
// signals wg.
func DisplayProgress(wg *sync.WaitGroup, results <-chan DocumentResult, total int, out io.Writer) {
	defer wg.Done()
	if total == 0 {
		for range results {
		}
		return
	}

	state := NewProgressState(total)
	s := newSpinner(spinner.WithWriter(out))
	s.UpdateSuffix(state.Suffix())
	s.Start()
	defer s.Stop()

	for res := range results {
		state.Record(res.Err != nil)
		s.UpdateSuffix(state.Suffix())
	}
}

// progressBar generates a string representing a textual progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}
