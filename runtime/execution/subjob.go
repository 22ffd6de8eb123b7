package execution

import (
	"sync"
	"time"

	"github.com/viant/fanout/internal/clock"
	"github.com/viant/fanout/model/types"
)

// SubJob is the record of one unit of work triggered for a bulk job.
type SubJob struct {
	ID       string           `json:"id"`
	JobID    string           `json:"jobId"`
	Seq      int              `json:"seq"`
	Action   types.ActionKind `json:"action"`
	TargetID string           `json:"targetId,omitempty"`
	// Missing is set when the sub-job was triggered for a missing marker.
	Missing      bool        `json:"missing,omitempty"`
	State        TaskState   `json:"state"`
	Error        string      `json:"error,omitempty"`
	DisplayName  string      `json:"displayName,omitempty"`
	DisplayInput []string    `json:"displayInput,omitempty"`
	Output       interface{} `json:"output,omitempty"`
	ScheduledAt  time.Time   `json:"scheduledAt"`
	StartedAt    *time.Time  `json:"startedAt,omitempty"`
	CompletedAt  *time.Time  `json:"completedAt,omitempty"`
	mux          sync.RWMutex
}

// NewSubJob creates a pending sub-job
func NewSubJob(id, jobID string, seq int, action types.ActionKind, target types.Target) *SubJob {
	ret := &SubJob{
		ID:          id,
		JobID:       jobID,
		Seq:         seq,
		Action:      action,
		State:       TaskStatePending,
		ScheduledAt: clock.Now(),
	}
	if target == nil {
		ret.Missing = true
	} else {
		ret.TargetID = target.TargetID()
	}
	return ret
}

// Start marks the sub-job as running
func (e *SubJob) Start() {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.StartedAt = clock.NowPtr()
	e.State = TaskStateRunning
}

// Complete marks the sub-job as completed
func (e *SubJob) Complete(output interface{}) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.CompletedAt = clock.NowPtr()
	e.Output = output
	e.State = TaskStateCompleted
}

// Fail marks the sub-job as failed
func (e *SubJob) Fail(err error) {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.CompletedAt = clock.NowPtr()
	if err != nil {
		e.Error = err.Error()
	}
	e.State = TaskStateFailed
}

// Skip marks the sub-job as skipped
func (e *SubJob) Skip() {
	e.mux.Lock()
	defer e.mux.Unlock()
	e.CompletedAt = clock.NowPtr()
	e.State = TaskStateSkipped
}

// GetState returns the sub-job state
func (e *SubJob) GetState() TaskState {
	e.mux.RLock()
	defer e.mux.RUnlock()
	return e.State
}

// Clone creates a copy of the sub-job so that the caller can mutate it
// without affecting the original instance.
func (e *SubJob) Clone() *SubJob {
	if e == nil {
		return nil
	}
	e.mux.RLock()
	defer e.mux.RUnlock()
	return &SubJob{
		ID:           e.ID,
		JobID:        e.JobID,
		Seq:          e.Seq,
		Action:       e.Action,
		TargetID:     e.TargetID,
		Missing:      e.Missing,
		State:        e.State,
		Error:        e.Error,
		DisplayName:  e.DisplayName,
		DisplayInput: append([]string(nil), e.DisplayInput...),
		Output:       e.Output,
		ScheduledAt:  e.ScheduledAt,
		StartedAt:    e.StartedAt,
		CompletedAt:  e.CompletedAt,
	}
}
