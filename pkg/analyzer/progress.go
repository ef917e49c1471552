package analyzer

import (
	"context"
	"sync/atomic"
)

// Progress is a snapshot of a batch in flight.
type Progress struct {
	Done   int    // files finished, including failures
	Failed int    // files that finished with an error
	Total  int    // files expected so far
	Path   string // file that finished last, empty in Snapshot
}

// ProgressFunc receives a snapshot each time a file finishes. It may be
// called from several goroutines at once.
type ProgressFunc func(Progress)

// Tracker counts finished files for a batch. Safe for concurrent use.
type Tracker struct {
	total  atomic.Int64
	done   atomic.Int64
	failed atomic.Int64
	notify ProgressFunc
}

// NewTracker creates a tracker that reports to notify, which may be nil.
func NewTracker(notify ProgressFunc) *Tracker {
	return &Tracker{notify: notify}
}

// Expect adds n files to the expected total.
func (t *Tracker) Expect(n int) {
	t.total.Add(int64(n))
}

// Finish records that path is done. A non-nil err counts it as failed.
func (t *Tracker) Finish(path string, err error) {
	failed := t.failed.Load()
	if err != nil {
		failed = t.failed.Add(1)
	}
	done := t.done.Add(1)
	if t.notify == nil {
		return
	}
	t.notify(Progress{
		Done:   int(done),
		Failed: int(failed),
		Total:  int(t.total.Load()),
		Path:   path,
	})
}

// Snapshot returns the current counts.
func (t *Tracker) Snapshot() Progress {
	return Progress{
		Done:   int(t.done.Load()),
		Failed: int(t.failed.Load()),
		Total:  int(t.total.Load()),
	}
}

type trackerKey struct{}

// WithTracker returns a context carrying t for the batch layer to report to.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, trackerKey{}, t)
}

// TrackerFromContext returns the tracker carried by ctx, or nil.
func TrackerFromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}
