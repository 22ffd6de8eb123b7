package execution

import (
	"sync"
	"time"

	"github.com/viant/fanout/internal/clock"
	"github.com/viant/fanout/model/bulk"
	"github.com/viant/fanout/progress"
)

// Job is the aggregate bulk job record; it owns the frozen request for its
// entire lifetime.
type Job struct {
	ID        string        `json:"id"`
	Request   *bulk.Request `json:"request"`
	State     JobState      `json:"state"`
	BatchSize int           `json:"batchSize"`
	// Window is the batch window currently (or last) dispatched.
	Window          bulk.Window       `json:"window"`
	Dispatched      int               `json:"dispatched"`
	CancelRequested bool              `json:"cancelRequested,omitempty"`
	Progress        progress.Counters `json:"progress"`
	Errors          []string          `json:"errors,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	StartedAt       *time.Time        `json:"startedAt,omitempty"`
	FinishedAt      *time.Time        `json:"finishedAt,omitempty"`
	mux             sync.RWMutex
}

// NewJob creates a pending job for request
func NewJob(id string, request *bulk.Request, batchSize int) *Job {
	return &Job{
		ID:        id,
		Request:   request,
		State:     JobStatePending,
		BatchSize: batchSize,
		CreatedAt: clock.Now(),
	}
}

// Start marks the job as running
func (j *Job) Start() {
	j.mux.Lock()
	defer j.mux.Unlock()
	j.StartedAt = clock.NowPtr()
	j.State = JobStateRunning
}

// SetWindow records the window being dispatched
func (j *Job) SetWindow(window bulk.Window) {
	j.mux.Lock()
	defer j.mux.Unlock()
	j.Window = window
}

// AddDispatched increments the number of triggered sub-jobs
func (j *Job) AddDispatched(count int) int {
	j.mux.Lock()
	defer j.mux.Unlock()
	j.Dispatched += count
	return j.Dispatched
}

// SetProgress stores a counters snapshot
func (j *Job) SetProgress(counters progress.Counters) {
	j.mux.Lock()
	defer j.mux.Unlock()
	j.Progress = counters
}

// RequestCancel flags the job for cancellation; it returns false when the job
// already finished.
func (j *Job) RequestCancel() bool {
	j.mux.Lock()
	defer j.mux.Unlock()
	if j.State.IsTerminal() {
		return false
	}
	j.CancelRequested = true
	return true
}

// IsCancelRequested returns the cancellation flag
func (j *Job) IsCancelRequested() bool {
	j.mux.RLock()
	defer j.mux.RUnlock()
	return j.CancelRequested
}

// Finish sets a terminal state
func (j *Job) Finish(state JobState, errors []string, summary string) {
	j.mux.Lock()
	defer j.mux.Unlock()
	j.State = state
	j.Errors = errors
	j.Summary = summary
	j.FinishedAt = clock.NowPtr()
}

// GetState returns the job state
func (j *Job) GetState() JobState {
	j.mux.RLock()
	defer j.mux.RUnlock()
	return j.State
}

// CurrentWindow returns the window being dispatched
func (j *Job) CurrentWindow() bulk.Window {
	j.mux.RLock()
	defer j.mux.RUnlock()
	return j.Window
}

// Clone creates a deep copy of the mutable part of the job.  The request is
// immutable after planning and is shared.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	j.mux.RLock()
	defer j.mux.RUnlock()
	return &Job{
		ID:              j.ID,
		Request:         j.Request,
		State:           j.State,
		BatchSize:       j.BatchSize,
		Window:          j.Window,
		Dispatched:      j.Dispatched,
		CancelRequested: j.CancelRequested,
		Progress:        j.Progress,
		Errors:          append([]string(nil), j.Errors...),
		Summary:         j.Summary,
		CreatedAt:       j.CreatedAt,
		StartedAt:       j.StartedAt,
		FinishedAt:      j.FinishedAt,
	}
}
