package executor

import (
	"context"
	"reflect"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viant/fanout/extension"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/runtime/execution"
)

// Listener is invoked once an action returns, whether it failed or not.
type Listener func(subJob *execution.SubJob, call *types.Call, output interface{}, err error)

// LogListener returns a listener logging every executed sub-job at debug level.
func LogListener(logger logrus.FieldLogger) Listener {
	return func(subJob *execution.SubJob, call *types.Call, output interface{}, err error) {
		entry := logger.WithFields(logrus.Fields{
			"job":     subJob.JobID,
			"subJob":  subJob.ID,
			"action":  subJob.Action.String(),
			"missing": call.Missing(),
		})
		if err != nil {
			entry.WithError(err).Debug("sub-job action failed")
			return
		}
		entry.WithField("output", output).Debug("sub-job action executed")
	}
}

// Option is used to customise the executor instance.
type Option func(*Service)

// WithListener overrides the listener invoked after every executed sub-job.
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listener = l
	}
}

// Service executes sub-job actions.
type Service struct {
	actions  *extension.Actions
	listener Listener
}

// Execute runs the sub-job action with call and returns the action output.
// Panics raised by the action are returned as ErrPanic.
func (s *Service) Execute(ctx context.Context, subJob *execution.SubJob, call *types.Call) (output interface{}, err error) {
	if subJob == nil {
		return nil, ErrNilSubJob
	}
	if call == nil {
		return nil, ErrNilCall
	}
	_, signature, method, err := s.actions.Resolve(subJob.Action)
	if err != nil {
		return nil, err
	}
	output = newOutput(signature.Output)
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = errors.Wrapf(ErrPanic, "%v: %v", subJob.Action, r)
		}
		if s.listener != nil {
			s.listener(subJob, call, output, err)
		}
	}()
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	if err = method(ctx, call, output); err != nil {
		return nil, err
	}
	return output, nil
}

func newOutput(rType reflect.Type) interface{} {
	if rType == nil {
		return nil
	}
	if rType.Kind() == reflect.Ptr {
		return reflect.New(rType.Elem()).Interface()
	}
	return reflect.New(rType).Interface()
}

// New creates a new executor service instance.
func New(actions *extension.Actions, opts ...Option) *Service {
	s := &Service{actions: actions}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
