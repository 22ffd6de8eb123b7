package event

import "time"

// Sub-job lifecycle event types
const (
	TypeTriggered = "triggered"
	TypeStarted   = "started"
	TypeCompleted = "completed"
	TypeFailed    = "failed"
	TypeSkipped   = "skipped"
)

type Context struct {
	JobID       string `json:"jobID"`
	SubJobID    string `json:"subJobID"`
	TargetID    string `json:"targetID,omitempty"`
	EventType   string `json:"eventType"`
	Service     string `json:"service"`
	Method      string `json:"method"`
	TimeTakenMs int    `json:"timeTakenMs"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// Type returns the event type, empty when no context was set
func (e *Event[T]) Type() string {
	if e == nil || e.Context == nil {
		return ""
	}
	return e.Context.EventType
}
