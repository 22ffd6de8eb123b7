package execution

// TaskState represents the current state of a sub-job
type TaskState string

const (
	TaskStatePending   TaskState = "pending"
	TaskStateRunning   TaskState = "running"
	TaskStateCompleted TaskState = "completed"
	TaskStateFailed    TaskState = "failed"
	TaskStateSkipped   TaskState = "skipped"
)

// IsTerminal returns true for completed, failed and skipped
func (t TaskState) IsTerminal() bool {
	switch t {
	case TaskStateCompleted, TaskStateFailed, TaskStateSkipped:
		return true
	}
	return false
}

// JobState represents the state of an aggregate bulk job
type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
	JobStateCancelled JobState = "cancelled"
)

// IsTerminal returns true for completed, failed and cancelled
func (s JobState) IsTerminal() bool {
	switch s {
	case JobStateCompleted, JobStateFailed, JobStateCancelled:
		return true
	}
	return false
}
