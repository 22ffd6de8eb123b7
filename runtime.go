package fanout

import (
	"context"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/viant/fanout/model/bulk"
	"github.com/viant/fanout/policy"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	"github.com/viant/fanout/service/engine"
	"github.com/viant/fanout/service/status"
	"github.com/viant/fanout/tracing"
)

// Runtime exposes bulk planning and job tracking
type Runtime struct {
	engine      *engine.Service
	policy      *policy.Policy
	waitTimeout time.Duration
	closers     []func() error
}

// Plan validates input and freezes it into a bulk request
func (r *Runtime) Plan(ctx context.Context, input *bulk.PlanInput) (*bulk.Request, error) {
	if r.policy != nil && policy.FromContext(ctx) == nil {
		ctx = policy.WithPolicy(ctx, r.policy)
	}
	return r.engine.Orchestrator().Plan(ctx, input)
}

// Submit starts a bulk job for a planned request
func (r *Runtime) Submit(ctx context.Context, request *bulk.Request) (*execution.Job, error) {
	return r.engine.Submit(ctx, request)
}

// Run plans and submits in one call
func (r *Runtime) Run(ctx context.Context, input *bulk.PlanInput) (*execution.Job, error) {
	request, err := r.Plan(ctx, input)
	if err != nil {
		return nil, err
	}
	return r.Submit(ctx, request)
}

// Wait waits for the job to finish; a non-positive timeout uses the
// configured default.
func (r *Runtime) Wait(ctx context.Context, jobID string, timeout time.Duration) (*execution.Job, error) {
	if timeout <= 0 {
		timeout = r.waitTimeout
	}
	return r.engine.Wait(ctx, jobID, timeout)
}

// Cancel requests job cancellation
func (r *Runtime) Cancel(ctx context.Context, jobID string) error {
	return r.engine.Cancel(ctx, jobID)
}

// Job returns a job
func (r *Runtime) Job(ctx context.Context, jobID string) (*execution.Job, error) {
	return r.engine.Job(ctx, jobID)
}

// Jobs returns jobs matching parameters (State, Action)
func (r *Runtime) Jobs(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Job, error) {
	return r.engine.Jobs(ctx, parameters...)
}

// SubJobs returns the sub-jobs of a job in trigger order
func (r *Runtime) SubJobs(ctx context.Context, jobID string) ([]*execution.SubJob, error) {
	return r.engine.SubJobs(ctx, jobID)
}

// HumanizedName returns the display name of a job
func (r *Runtime) HumanizedName(ctx context.Context, jobID string) (string, error) {
	jobCtx, err := r.engine.JobContext(ctx, jobID)
	if err != nil {
		return "", err
	}
	return r.engine.Orchestrator().HumanizedName(ctx, jobCtx), nil
}

// HumanizedInput returns the display input of a job
func (r *Runtime) HumanizedInput(ctx context.Context, jobID string) ([]string, error) {
	jobCtx, err := r.engine.JobContext(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return r.engine.Orchestrator().HumanizedInput(ctx, jobCtx), nil
}

// Status returns the aggregate status of a job
func (r *Runtime) Status(ctx context.Context, jobID string) (*status.Aggregate, error) {
	jobCtx, err := r.engine.JobContext(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return r.engine.Orchestrator().Aggregate(ctx, jobCtx)
}

// Shutdown stops the engine and releases action sessions
func (r *Runtime) Shutdown(ctx context.Context) error {
	var result *multierror.Error
	if err := r.engine.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	for _, closer := range r.closers {
		if err := closer(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := tracing.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
