package memory

import (
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	"github.com/viant/fanout/service/dao/criteria"
	"github.com/viant/fanout/service/dao/store"
)

// Service implements an in-memory, thread-safe store for aggregate jobs.  All
// API methods work with copies to eliminate data races between goroutines.
type Service struct {
	*store.MemoryStore[string, execution.Job]
}

var _ dao.Service[string, execution.Job] = (*Service)(nil)

func jobFields(j *execution.Job) criteria.Field {
	return func(name string) (string, bool) {
		switch name {
		case "State":
			return string(j.GetState()), true
		case "Action":
			if j.Request == nil {
				return "", true
			}
			return j.Request.Action.String(), true
		}
		return "", false
	}
}

func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, execution.Job](
		func(j *execution.Job) string { return j.ID },
		store.WithClone[string, execution.Job]((*execution.Job).Clone),
		store.WithFields[string, execution.Job](jobFields),
	)}
}
