package engine

import (
	"github.com/sirupsen/logrus"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	"github.com/viant/fanout/service/event"
	"github.com/viant/fanout/service/executor"
)

type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithJobDAO sets the aggregate job store
func WithJobDAO(jobDAO dao.Service[string, execution.Job]) Option {
	return func(s *Service) {
		s.jobDAO = jobDAO
	}
}

// WithSubJobDAO sets the sub-job store
func WithSubJobDAO(subJobDAO dao.Service[string, execution.SubJob]) Option {
	return func(s *Service) {
		s.subJobDAO = subJobDAO
	}
}

// WithExecutor sets the sub-job executor
func WithExecutor(executor *executor.Service) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithSubJobListener publishes sub-job lifecycle events to handler; the
// handler runs on its own goroutine.
func WithSubJobListener(handler func(*event.Event[*execution.SubJob])) Option {
	return func(s *Service) {
		s.subJobListener = handler
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithIDGenerator overrides the sub-job/job id generator
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}
