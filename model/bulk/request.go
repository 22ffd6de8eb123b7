package bulk

import (
	"time"

	"github.com/viant/fanout/model/types"
)

// Request is the frozen bulk plan. It is created once by Build and only read
// afterwards.
type Request struct {
	ID         string                 `json:"id"`
	Action     types.ActionKind       `json:"action"`
	TargetIDs  []string               `json:"targetIds"`
	TargetKind string                 `json:"targetKind"`
	Args       []interface{}          `json:"args,omitempty"`
	Options    map[string]interface{} `json:"options,omitempty"`
	// ConcurrencyLimit caps concurrently running sub-jobs; nil means no cap.
	ConcurrencyLimit *int      `json:"concurrencyLimit,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TotalCount returns the number of requested targets
func (r *Request) TotalCount() int {
	return len(r.TargetIDs)
}

// Batch returns identifiers in [from, from+size); the slice is clamped at the
// end of the list and nil past it.
func (r *Request) Batch(from, size int) []string {
	window, err := Window{Offset: from, Size: size}.Clamp(len(r.TargetIDs))
	if err != nil || window.Size == 0 {
		return nil
	}
	return r.TargetIDs[window.Offset:window.End()]
}

// SharedArgs returns the arguments passed to every sub-job: Args followed by
// Options when Options is not empty.
func (r *Request) SharedArgs() []interface{} {
	args := make([]interface{}, 0, len(r.Args)+1)
	args = append(args, r.Args...)
	if len(r.Options) > 0 {
		args = append(args, r.Options)
	}
	return args
}
