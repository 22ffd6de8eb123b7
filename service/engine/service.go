package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viant/fanout/extension"
	"github.com/viant/fanout/internal/idgen"
	"github.com/viant/fanout/model/bulk"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/policy"
	"github.com/viant/fanout/progress"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	jmemory "github.com/viant/fanout/service/dao/job/memory"
	smemory "github.com/viant/fanout/service/dao/subjob/memory"
	"github.com/viant/fanout/service/event"
	"github.com/viant/fanout/service/executor"
	"github.com/viant/fanout/service/messaging"
	"github.com/viant/fanout/service/orchestrator"
	"github.com/viant/fanout/tracing"
)

var (
	// ErrJobNotRunning is returned when a sub-job is triggered for a job the
	// engine is not driving.
	ErrJobNotRunning = errors.New("job is not running")
	// ErrShutdown is returned by Submit after Shutdown
	ErrShutdown = errors.New("engine is shut down")
)

// Service drives bulk jobs in process
type Service struct {
	config         Config
	actions        *extension.Actions
	orchestrator   *orchestrator.Service
	executor       *executor.Service
	jobDAO         dao.Service[string, execution.Job]
	subJobDAO      dao.Service[string, execution.SubJob]
	events         *event.Service
	subJobListener func(*event.Event[*execution.SubJob])
	logger         logrus.FieldLogger
	newID          func() string

	runs     map[string]*run
	mux      sync.RWMutex
	wg       sync.WaitGroup
	shutdown bool
}

// Submit persists a job for request and starts dispatching it. The returned
// job is a snapshot.
func (s *Service) Submit(ctx context.Context, request *bulk.Request) (*execution.Job, error) {
	if request == nil || request.TotalCount() == 0 {
		return nil, bulk.ErrEmptyTargetSet
	}
	job := execution.NewJob(s.newID(), request, s.config.BatchSize)
	if err := s.jobDAO.Save(ctx, job); err != nil {
		return nil, errors.Wrapf(err, "failed to save job %v", job.ID)
	}
	limit := s.config.DefaultConcurrency
	if request.ConcurrencyLimit != nil {
		limit = *request.ConcurrencyLimit
	}
	aRun := newRun(s, job, limit)

	s.mux.Lock()
	if s.shutdown {
		s.mux.Unlock()
		aRun.cancel()
		return nil, ErrShutdown
	}
	s.runs[job.ID] = aRun
	s.wg.Add(1)
	s.mux.Unlock()

	s.logger.WithFields(logrus.Fields{
		"job":         job.ID,
		"action":      request.Action.String(),
		"targets":     request.TotalCount(),
		"concurrency": limit,
	}).Info("bulk job submitted")
	go s.drive(aRun)
	return job.Clone(), nil
}

// drive dispatches windows in offset order, then waits for the sub-jobs
func (s *Service) drive(r *run) {
	defer s.wg.Done()
	defer close(r.done)
	defer r.cancel()
	ctx, span := tracing.StartSpan(r.ctx, "engine.job", "INTERNAL")
	job := r.job
	job.Start()
	s.saveJob(ctx, job)

	var dispatchErr error
	for _, window := range bulk.Windows(job.Request.TotalCount(), job.BatchSize) {
		job.SetWindow(window)
		signal := orchestrator.SignalNone
		if job.IsCancelRequested() {
			signal = orchestrator.SignalSkip
		}
		subJobs, err := s.orchestrator.Run(ctx, r, signal)
		job.AddDispatched(len(subJobs))
		s.saveJob(ctx, job)
		if err != nil {
			dispatchErr = err
			s.logger.WithError(err).WithFields(logrus.Fields{
				"job":           job.ID,
				"window.offset": window.Offset,
				"window.size":   window.Size,
			}).Error("failed to dispatch bulk window")
			break
		}
	}
	_ = r.group.Wait()

	errs, summary := r.summary()
	state := execution.JobStateCompleted
	switch {
	case dispatchErr != nil:
		state = execution.JobStateFailed
		errs = append(errs, dispatchErr.Error())
		if summary == "" {
			summary = dispatchErr.Error()
		}
	case job.IsCancelRequested():
		state = execution.JobStateCancelled
	case len(errs) > 0 && s.config.Rescue == policy.RescueFail:
		state = execution.JobStateFailed
	}
	job.SetProgress(r.progress.Snapshot())
	job.Finish(state, errs, summary)
	s.saveJob(context.Background(), job)
	s.logger.WithFields(logrus.Fields{
		"job":      job.ID,
		"state":    state,
		"failed":   len(errs),
		"progress": job.Clone().Progress,
	}).Info("bulk job finished")
	tracing.EndSpan(span, dispatchErr)

	s.mux.Lock()
	delete(s.runs, job.ID)
	s.mux.Unlock()
}

// Trigger creates a sub-job and schedules its execution; it blocks while the
// job concurrency cap is reached.
func (s *Service) Trigger(ctx context.Context, job orchestrator.JobContext, action types.ActionKind, target types.Target, args []interface{}) (*execution.SubJob, error) {
	r := s.lookupRun(job.JobID())
	if r == nil {
		return nil, errors.Wrapf(ErrJobNotRunning, "%v", job.JobID())
	}
	subJob := execution.NewSubJob(s.newID(), job.JobID(), r.nextSeq(), action, target)
	call := &types.Call{JobID: subJob.JobID, SubJobID: subJob.ID, Target: target, Args: args}
	call.HasOptions = job.Request() != nil && len(job.Request().Options) > 0
	subJob.DisplayName, subJob.DisplayInput = s.display(action, call)
	if err := s.subJobDAO.Save(ctx, subJob); err != nil {
		return nil, errors.Wrapf(err, "failed to save sub-job %v", subJob.ID)
	}
	delta := progress.Delta{Pending: 1}
	if subJob.Missing {
		delta.Missing = 1
	}
	r.progress.Update(delta)
	s.publish(ctx, event.TypeTriggered, subJob, 0)

	r.group.Go(func() error {
		s.execute(r, subJob, call)
		return nil
	})
	return subJob.Clone(), nil
}

func (s *Service) display(action types.ActionKind, call *types.Call) (string, []string) {
	service, signature, _, err := s.actions.Resolve(action)
	if err != nil {
		return action.Method, nil
	}
	if humanizer, ok := service.(types.Humanizer); ok {
		return humanizer.Humanize(action.Method, call)
	}
	if call.Missing() {
		return signature.DisplayName(), nil
	}
	return signature.DisplayName(), []string{types.LabelOf(call.Target)}
}

func (s *Service) execute(r *run, subJob *execution.SubJob, call *types.Call) {
	ctx, span := tracing.StartSpan(progress.WithTracker(r.ctx, r.progress), "engine.subJob", "INTERNAL")
	span.WithAttributes(tracing.Attrs("job", subJob.JobID, "subJob", subJob.ID, "missing", subJob.Missing))
	started := time.Now()
	subJob.Start()
	s.saveSubJob(ctx, subJob)
	progress.UpdateCtx(ctx, progress.Delta{Pending: -1, Running: 1})
	s.publish(ctx, event.TypeStarted, subJob, 0)

	output, err := s.executor.Execute(ctx, subJob, call)
	elapsed := int(time.Since(started).Milliseconds())
	if err != nil {
		subJob.Fail(err)
		progress.UpdateCtx(ctx, progress.Delta{Running: -1, Failed: 1})
		r.addFailure(fmt.Errorf("sub-job %v (target %q): %w", subJob.ID, subJob.TargetID, err))
		s.logger.WithError(err).WithFields(logrus.Fields{
			"job":     subJob.JobID,
			"subJob":  subJob.ID,
			"action":  subJob.Action.String(),
			"missing": subJob.Missing,
		}).Warn("sub-job failed")
		s.saveSubJob(ctx, subJob)
		s.publish(ctx, event.TypeFailed, subJob, elapsed)
		tracing.EndSpan(span, err)
		return
	}
	subJob.Complete(output)
	progress.UpdateCtx(ctx, progress.Delta{Running: -1, Completed: 1})
	s.saveSubJob(ctx, subJob)
	s.publish(ctx, event.TypeCompleted, subJob, elapsed)
	tracing.EndSpan(span, nil)
}

func (s *Service) publish(ctx context.Context, eventType string, subJob *execution.SubJob, elapsedMs int) {
	if s.events == nil {
		return
	}
	publisher, err := event.PublisherOf[*execution.SubJob](s.events)
	if err != nil {
		s.logger.WithError(err).Warn("failed to get sub-job event publisher")
		return
	}
	eCtx := &event.Context{
		JobID:       subJob.JobID,
		SubJobID:    subJob.ID,
		TargetID:    subJob.TargetID,
		EventType:   eventType,
		Service:     subJob.Action.Service,
		Method:      subJob.Action.Method,
		TimeTakenMs: elapsedMs,
	}
	if err = publisher.Publish(ctx, event.NewEvent(eCtx, subJob.Clone())); err != nil {
		s.logger.WithError(err).WithField("subJob", subJob.ID).Warn("failed to publish sub-job event")
	}
}

func (s *Service) saveJob(ctx context.Context, job *execution.Job) {
	if err := s.jobDAO.Save(ctx, job); err != nil {
		s.logger.WithError(err).WithField("job", job.ID).Error("failed to save job")
	}
}

func (s *Service) saveSubJob(ctx context.Context, subJob *execution.SubJob) {
	if err := s.subJobDAO.Save(ctx, subJob); err != nil {
		s.logger.WithError(err).WithField("subJob", subJob.ID).Error("failed to save sub-job")
	}
}

func (s *Service) lookupRun(jobID string) *run {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.runs[jobID]
}

// Cancel flags a running job; remaining windows are skipped while already
// triggered sub-jobs finish.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	if r := s.lookupRun(jobID); r != nil {
		if r.job.RequestCancel() {
			s.saveJob(ctx, r.job)
			s.logger.WithField("job", jobID).Info("bulk job cancellation requested")
		}
		return nil
	}
	job, err := s.jobDAO.Load(ctx, jobID)
	if err != nil {
		return err
	}
	if !job.GetState().IsTerminal() {
		return errors.Wrapf(ErrJobNotRunning, "%v", jobID)
	}
	return nil
}

// Job returns a job snapshot
func (s *Service) Job(ctx context.Context, jobID string) (*execution.Job, error) {
	return s.jobDAO.Load(ctx, jobID)
}

// Jobs lists jobs, see the job DAO for parameters
func (s *Service) Jobs(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Job, error) {
	return s.jobDAO.List(ctx, parameters...)
}

// SubJobs returns sub-jobs of a job in trigger order
func (s *Service) SubJobs(ctx context.Context, jobID string) ([]*execution.SubJob, error) {
	return s.subJobDAO.List(ctx, dao.NewParameter("JobID", jobID))
}

// JobContext returns the orchestrator view of a stored job
func (s *Service) JobContext(ctx context.Context, jobID string) (orchestrator.JobContext, error) {
	if r := s.lookupRun(jobID); r != nil {
		return r, nil
	}
	job, err := s.jobDAO.Load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &run{service: s, job: job}, nil
}

// Wait polls the job until it reaches a terminal state or timeout elapses
func (s *Service) Wait(ctx context.Context, jobID string, timeout time.Duration) (*execution.Job, error) {
	deadline := time.Now().Add(timeout)
	for {
		job, err := s.jobDAO.Load(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if job.GetState().IsTerminal() {
			return job, nil
		}
		if time.Now().After(deadline) {
			return job, fmt.Errorf("timeout waiting for job %q", jobID)
		}
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-time.After(s.config.PollInterval):
		}
	}
}

// Shutdown stops accepting jobs, cancels running sub-job contexts and waits
// for drivers to exit or ctx to be done.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	s.shutdown = true
	for _, r := range s.runs {
		r.job.RequestCancel()
		r.cancel()
	}
	s.mux.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		if s.events != nil {
			s.events.Close()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// New creates an engine; it installs itself as the orchestrator trigger.
func New(actions *extension.Actions, repositories *extension.Repositories, opts ...Option) (*Service, error) {
	ret := &Service{
		config:  DefaultConfig(),
		actions: actions,
		runs:    make(map[string]*run),
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.config.init()
	if ret.logger == nil {
		ret.logger = logrus.StandardLogger()
	}
	if ret.newID == nil {
		ret.newID = idgen.New
	}
	if ret.jobDAO == nil {
		ret.jobDAO = jmemory.New()
	}
	if ret.subJobDAO == nil {
		ret.subJobDAO = smemory.New()
	}
	if ret.executor == nil {
		ret.executor = executor.New(actions, executor.WithListener(executor.LogListener(ret.logger)))
	}
	var err error
	if ret.subJobListener != nil {
		if ret.events, err = event.New(messaging.Memory, event.WithLogger(ret.logger)); err != nil {
			return nil, err
		}
		if err = event.SetListenerOf[*execution.SubJob](ret.events, ret.subJobListener); err != nil {
			return nil, err
		}
	}
	if ret.orchestrator, err = orchestrator.New(actions, repositories,
		orchestrator.WithTrigger(ret),
		orchestrator.WithLogger(ret.logger)); err != nil {
		return nil, err
	}
	return ret, nil
}

// Orchestrator returns the orchestrator driven by the engine
func (s *Service) Orchestrator() *orchestrator.Service {
	return s.orchestrator
}
