// Package progress provides a lightweight tracker that keeps aggregated
// sub-job counters (total, completed, failed, …) for a single bulk job.  The
// tracker instance can live in the execution context – every component that
// receives the context can atomically update the counters via the Delta
// helper without requiring a global registry.

package progress

import (
	"context"
	"sync"
	"time"
)

// Delta represents an incremental counter change emitted by the engine.  The
// fields are signed and therefore can be either positive (increment) or
// negative (decrement).
type Delta struct {
	Total     int
	Completed int
	Skipped   int
	Failed    int
	Running   int
	Pending   int
	Missing   int
}

// Counters is a plain copy of the tracked values.
type Counters struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Running   int `json:"running"`
	Pending   int `json:"pending"`
	// Missing counts sub-jobs triggered for targets that no longer existed.
	Missing int `json:"missing"`
}

// Finished returns the number of sub-jobs in a terminal state
func (c Counters) Finished() int {
	return c.Completed + c.Failed + c.Skipped
}

// Progress keeps aggregated counters for one bulk job.  It is safe for
// concurrent use.
type Progress struct {
	JobID     string
	StartedAt time.Time

	counters Counters
	mux      sync.Mutex
	onChange func(Counters)
}

// Update applies the supplied delta.  If an onChange callback has been
// registered it is invoked with a copy of the counters outside the critical
// section so that the callback can perform slow operations without blocking
// the engine.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.counters.Total += d.Total
	p.counters.Completed += d.Completed
	p.counters.Skipped += d.Skipped
	p.counters.Failed += d.Failed
	p.counters.Running += d.Running
	p.counters.Pending += d.Pending
	p.counters.Missing += d.Missing
	snapshot := p.counters
	cb := p.onChange
	p.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters.
func (p *Progress) Snapshot() Counters {
	if p == nil {
		return Counters{}
	}
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.counters
}

// OnChange registers a callback invoked after every Update.  Passing nil
// disables the callback.
func (p *Progress) OnChange(cb func(Counters)) {
	if p == nil {
		return
	}
	p.mux.Lock()
	p.onChange = cb
	p.mux.Unlock()
}

// New creates a tracker
func New(jobID string, onChange func(Counters)) *Progress {
	return &Progress{JobID: jobID, StartedAt: time.Now(), onChange: onChange}
}

// ----------------------------------------------------------------------------
// Context helpers
// ----------------------------------------------------------------------------

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds the tracker in a derived context.
func WithTracker(ctx context.Context, tracker *Progress) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, tracker)
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Progress, bool) {
	if ctx == nil {
		return nil, false
	}
	tr, ok := ctx.Value(trackerKey).(*Progress)
	return tr, ok
}

// UpdateCtx looks up the tracker in ctx (if any) and applies the delta.
func UpdateCtx(ctx context.Context, d Delta) {
	if tr, ok := FromContext(ctx); ok {
		tr.Update(d)
	}
}
