package orchestrator

import (
	"context"

	"github.com/viant/fanout/model/bulk"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/runtime/execution"
)

// Signal is delivered by the engine with every run invocation
type Signal int

const (
	// SignalNone asks for the current window to be dispatched
	SignalNone Signal = iota
	// SignalSkip turns the invocation into a no-op
	SignalSkip
)

func (s Signal) String() string {
	if s == SignalSkip {
		return "skip"
	}
	return "none"
}

// JobContext is the aggregate job as seen by one orchestrator invocation
type JobContext interface {
	JobID() string
	Request() *bulk.Request
	CurrentWindow() bulk.Window
	SubJobs(ctx context.Context) ([]*execution.SubJob, error)
	IsCancelled() bool
}

// Trigger creates one sub-job of job; target is nil for a missing marker.
type Trigger interface {
	Trigger(ctx context.Context, job JobContext, action types.ActionKind, target types.Target, args []interface{}) (*execution.SubJob, error)
}

// TriggerFunc adapts a function to Trigger
type TriggerFunc func(ctx context.Context, job JobContext, action types.ActionKind, target types.Target, args []interface{}) (*execution.SubJob, error)

func (f TriggerFunc) Trigger(ctx context.Context, job JobContext, action types.ActionKind, target types.Target, args []interface{}) (*execution.SubJob, error) {
	return f(ctx, job, action, target, args)
}
