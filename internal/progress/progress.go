// Package progress renders batch progress bars on a terminal.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer"
)

// Bar wraps a progress bar for file processing.
type Bar struct {
	mu     sync.Mutex
	bar    *progressbar.ProgressBar
	w      io.Writer
	label  string
	max    int
	shown  int
	failed int
}

// NewSpinner creates a spinner for operations with unknown total count.
func NewSpinner(w io.Writer, label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar, w: w, label: label, max: -1}
}

// NewBar creates a progress bar with the given label and total count. The
// total grows when a tracker reports more work.
func NewBar(w io.Writer, label string, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, w: w, label: label, max: total}
}

// Tick increments the progress by 1. Safe for concurrent use.
func (b *Bar) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shown++
	_ = b.bar.Add(1)
}

// Tracker returns an analysis tracker that drives the bar. Updates may
// arrive out of order from concurrent workers; the bar never moves back.
func (b *Bar) Tracker() *analyzer.Tracker {
	return analyzer.NewTracker(b.update)
}

func (b *Bar) update(p analyzer.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max >= 0 && p.Total > b.max {
		b.max = p.Total
		b.bar.ChangeMax(p.Total)
	}
	if p.Failed > b.failed {
		b.failed = p.Failed
		b.bar.Describe(fmt.Sprintf("%s (%d failed)", b.label, p.Failed))
	}
	if p.Done > b.shown {
		b.shown = p.Done
		_ = b.bar.Set(p.Done)
	}
}

// Current returns the position shown by the bar.
func (b *Bar) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shown
}

// FinishSuccess clears the bar completely (no output).
func (b *Bar) FinishSuccess() {
	_ = b.bar.Finish()
	_ = b.bar.Clear()
}

// FinishSkipped clears the bar and prints a skip message.
func (b *Bar) FinishSkipped(reason string) {
	b.FinishSuccess()
	fmt.Fprintf(b.w, "  %s skipped (%s)\n", b.label, reason)
}

// FinishError clears the bar and prints an error message.
func (b *Bar) FinishError(err error) {
	b.FinishSuccess()
	fmt.Fprintf(b.w, "  %s error: %v\n", b.label, err)
}
