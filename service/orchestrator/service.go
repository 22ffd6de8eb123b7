package orchestrator

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viant/fanout/extension"
	"github.com/viant/fanout/model/bulk"
	"github.com/viant/fanout/policy"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/status"
	"github.com/viant/fanout/service/target"
	"github.com/viant/fanout/tracing"
)

// ErrNoTrigger is returned by Run when the service has no trigger
var ErrNoTrigger = errors.New("orchestrator: trigger not configured")

// Service plans bulk requests and dispatches their windows
type Service struct {
	actions      *extension.Actions
	repositories *extension.Repositories
	trigger      Trigger
	status       *status.Service
	logger       logrus.FieldLogger
}

// Option customises the orchestrator
type Option func(s *Service)

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithStatus sets the status service backing HumanizedName/HumanizedInput
func WithStatus(srv *status.Service) Option {
	return func(s *Service) {
		s.status = srv
	}
}

// WithTrigger sets the sub-job trigger
func WithTrigger(trigger Trigger) Option {
	return func(s *Service) {
		s.trigger = trigger
	}
}

// Plan validates the input and freezes it into a bulk request. The action
// and the target kind must both be registered, and the policy carried by ctx
// must allow the action. Nothing is persisted.
func (s *Service) Plan(ctx context.Context, input *bulk.PlanInput) (request *bulk.Request, err error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.Plan", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	if input == nil {
		return nil, bulk.ErrEmptyTargetSet
	}
	if request, err = bulk.Build(input); err != nil {
		return nil, err
	}
	span.WithAttributes(tracing.Attrs("action", request.Action.String(), "targetKind", request.TargetKind)).
		WithInt("targets", request.TotalCount())
	if _, _, _, err = s.actions.Resolve(request.Action); err != nil {
		return nil, err
	}
	if _, err = s.repositories.Lookup(request.TargetKind); err != nil {
		return nil, err
	}
	if err = policy.FromContext(ctx).Check(ctx, request.Action.String(), request.Options); err != nil {
		return nil, err
	}
	return request, nil
}

// Resolve returns exactly the clamped window size units: live targets in
// repository lookup order followed by one missing marker per identifier that
// could not be resolved.
func (s *Service) Resolve(ctx context.Context, request *bulk.Request, window bulk.Window) (units []*bulk.Unit, err error) {
	ctx, span := tracing.StartSpan(ctx, "orchestrator.Resolve", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	if window, err = window.Clamp(request.TotalCount()); err != nil {
		return nil, err
	}
	span.WithInt("window.offset", window.Offset).WithInt("window.size", window.Size)
	if window.Size == 0 {
		return []*bulk.Unit{}, nil
	}
	ids := request.Batch(window.Offset, window.Size)
	repository, err := s.repositories.Lookup(request.TargetKind)
	if err != nil {
		return nil, err
	}
	found, err := repository.Lookup(ctx, target.Unique(ids))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lookup %v targets", request.TargetKind)
	}

	pending := make(map[string]int, len(ids))
	for _, id := range ids {
		pending[id]++
	}
	units = make([]*bulk.Unit, 0, window.Size)
	for _, candidate := range found {
		if candidate == nil {
			continue
		}
		occurrences := pending[candidate.TargetID()]
		for i := 0; i < occurrences; i++ {
			units = append(units, &bulk.Unit{Target: candidate})
		}
		delete(pending, candidate.TargetID())
	}
	missing := window.Size - len(units)
	if missing > 0 {
		s.logger.WithFields(logrus.Fields{
			"targetKind":    request.TargetKind,
			"window.offset": window.Offset,
			"window.size":   window.Size,
			"missing":       missingIDs(ids, pending),
		}).Warn("bulk targets not found")
	}
	for i := 0; i < missing; i++ {
		units = append(units, &bulk.Unit{})
	}
	return units, nil
}

func missingIDs(ids []string, pending map[string]int) []string {
	var ret []string
	for _, id := range ids {
		if pending[id] > 0 {
			ret = append(ret, id)
		}
	}
	return ret
}

// Run dispatches the current window of job: one trigger per resolved unit.
// A skip signal or a cancelled job makes it a no-op. Trigger errors are
// returned along with the sub-jobs triggered before the failure.
func (s *Service) Run(ctx context.Context, job JobContext, signal Signal) (subJobs []*execution.SubJob, err error) {
	if signal == SignalSkip || job.IsCancelled() {
		s.logger.WithFields(logrus.Fields{"job": job.JobID(), "signal": signal.String()}).Debug("bulk run skipped")
		return nil, nil
	}
	if s.trigger == nil {
		return nil, ErrNoTrigger
	}
	ctx, span := tracing.StartSpan(ctx, "orchestrator.Run", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	request := job.Request()
	window := job.CurrentWindow()
	span.WithAttributes(tracing.Attrs("job", job.JobID(), "action", request.Action.String()))

	units, err := s.Resolve(ctx, request, window)
	if err != nil {
		return nil, err
	}
	subJobs = make([]*execution.SubJob, 0, len(units))
	for _, unit := range units {
		subJob, err := s.trigger.Trigger(ctx, job, request.Action, unit.Target, request.SharedArgs())
		if err != nil {
			return subJobs, errors.Wrapf(err, "failed to trigger %v for target %q", request.Action, unit.TargetID())
		}
		subJobs = append(subJobs, subJob)
	}
	return subJobs, nil
}

// HumanizedName returns the display name of the aggregate job
func (s *Service) HumanizedName(ctx context.Context, job JobContext) string {
	return s.status.HumanizedName(ctx, job)
}

// HumanizedInput returns the display input of the aggregate job
func (s *Service) HumanizedInput(ctx context.Context, job JobContext) []string {
	return s.status.HumanizedInput(ctx, job)
}

// Aggregate returns the job description with per-state sub-job counts
func (s *Service) Aggregate(ctx context.Context, job JobContext) (*status.Aggregate, error) {
	return s.status.Aggregate(ctx, job, s.TotalCount(job))
}

// TotalCount returns the number of requested targets
func (s *Service) TotalCount(job JobContext) int {
	return job.Request().TotalCount()
}

// BatchSlice returns requested identifiers in [offset, offset+size)
func (s *Service) BatchSlice(job JobContext, offset, size int) []string {
	return job.Request().Batch(offset, size)
}

// RescueStrategy declares that sub-job failures do not fail the aggregate
func (s *Service) RescueStrategy() policy.Rescue {
	return policy.RescueSkip
}

// New creates an orchestrator
func New(actions *extension.Actions, repositories *extension.Repositories, opts ...Option) (*Service, error) {
	ret := &Service{actions: actions, repositories: repositories, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.status == nil {
		srv, err := status.New(0, status.WithLogger(ret.logger))
		if err != nil {
			return nil, err
		}
		ret.status = srv
	}
	return ret, nil
}
