package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"github.com/viant/fanout/model/bulk"
	"github.com/viant/fanout/progress"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	"golang.org/x/sync/errgroup"
)

// run is the in-flight state of one aggregate job; it is the job context
// handed to the orchestrator.
type run struct {
	service  *Service
	job      *execution.Job
	group    *errgroup.Group
	progress *progress.Progress
	ctx      context.Context
	cancel   context.CancelFunc
	seq      int64
	mux      sync.Mutex
	failures *multierror.Error
	done     chan struct{}
}

func (r *run) JobID() string {
	return r.job.ID
}

func (r *run) Request() *bulk.Request {
	return r.job.Request
}

func (r *run) CurrentWindow() bulk.Window {
	return r.job.CurrentWindow()
}

func (r *run) IsCancelled() bool {
	return r.job.IsCancelRequested()
}

func (r *run) SubJobs(ctx context.Context) ([]*execution.SubJob, error) {
	return r.service.subJobDAO.List(ctx, dao.NewParameter("JobID", r.job.ID))
}

func (r *run) nextSeq() int {
	return int(atomic.AddInt64(&r.seq, 1))
}

func (r *run) addFailure(err error) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.failures = multierror.Append(r.failures, err)
}

// summary returns failure messages and the combined summary
func (r *run) summary() ([]string, string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.failures == nil || len(r.failures.Errors) == 0 {
		return nil, ""
	}
	messages := make([]string, 0, len(r.failures.Errors))
	for _, err := range r.failures.Errors {
		messages = append(messages, err.Error())
	}
	return messages, r.failures.Error()
}

func newRun(service *Service, job *execution.Job, limit int) *run {
	ctx, cancel := context.WithCancel(context.Background())
	group := &errgroup.Group{}
	group.SetLimit(limit)
	ret := &run{
		service: service,
		job:     job,
		group:   group,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	ret.progress = progress.New(job.ID, job.SetProgress)
	ret.progress.Update(progress.Delta{Total: job.Request.TotalCount()})
	return ret
}
