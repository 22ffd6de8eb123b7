package memory

import (
	"context"
	"sort"

	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	"github.com/viant/fanout/service/dao/criteria"
	"github.com/viant/fanout/service/dao/store"
)

// Service implements an in-memory sub-job storage.  List returns sub-jobs
// ordered by their trigger sequence.
type Service struct {
	*store.MemoryStore[string, execution.SubJob]
}

var _ dao.Service[string, execution.SubJob] = (*Service)(nil)

// List returns copies of sub-jobs matching parameters (JobID, State, TargetID)
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.SubJob, error) {
	ret, err := s.MemoryStore.List(ctx, parameters...)
	if err != nil {
		return nil, err
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].JobID != ret[j].JobID {
			return ret[i].JobID < ret[j].JobID
		}
		return ret[i].Seq < ret[j].Seq
	})
	return ret, nil
}

func subJobFields(e *execution.SubJob) criteria.Field {
	return func(name string) (string, bool) {
		switch name {
		case "JobID":
			return e.JobID, true
		case "State":
			return string(e.GetState()), true
		case "TargetID":
			return e.TargetID, true
		}
		return "", false
	}
}

// New constructor.
func New() *Service {
	return &Service{MemoryStore: store.NewMemoryStore[string, execution.SubJob](
		func(e *execution.SubJob) string { return e.ID },
		store.WithClone[string, execution.SubJob]((*execution.SubJob).Clone),
		store.WithFields[string, execution.SubJob](subJobFields),
	)}
}
