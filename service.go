package fanout

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/fanout/extension"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/policy"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/action/exec"
	"github.com/viant/fanout/service/action/nop"
	"github.com/viant/fanout/service/action/printer"
	"github.com/viant/fanout/service/dao"
	jfs "github.com/viant/fanout/service/dao/job/fs"
	"github.com/viant/fanout/service/engine"
	"github.com/viant/fanout/service/event"
	"github.com/viant/fanout/service/target"
)

// Service wires the bulk fan-out components together
type Service struct {
	config                *Config
	logger                logrus.FieldLogger
	runtime               *Runtime
	actions               *extension.Actions
	repositories          *extension.Repositories
	extensionServices     []types.Service
	extensionRepositories []target.Repository
	jobDAO                dao.Service[string, execution.Job]
	subJobDAO             dao.Service[string, execution.SubJob]
	subJobListener        func(*event.Event[*execution.SubJob])
	policy                *policy.Policy
	exec                  *exec.Service
	tracingErr            error
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.tracingErr != nil {
		return s.tracingErr
	}
	s.ensureLogger()
	if err := s.ensureBaseSetup(); err != nil {
		return err
	}

	s.exec = exec.New()
	s.actions = extension.NewActions(nop.New(), printer.New(os.Stdout), s.exec)
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	s.repositories = extension.NewRepositories(s.extensionRepositories...)

	engineOptions := []engine.Option{
		engine.WithConfig(s.config.engineConfig()),
		engine.WithLogger(s.logger),
	}
	if s.jobDAO != nil {
		engineOptions = append(engineOptions, engine.WithJobDAO(s.jobDAO))
	}
	if s.subJobDAO != nil {
		engineOptions = append(engineOptions, engine.WithSubJobDAO(s.subJobDAO))
	}
	if s.subJobListener != nil {
		engineOptions = append(engineOptions, engine.WithSubJobListener(s.subJobListener))
	}
	anEngine, err := engine.New(s.actions, s.repositories, engineOptions...)
	if err != nil {
		return err
	}
	s.runtime = &Runtime{
		engine:      anEngine,
		policy:      s.policy,
		waitTimeout: s.config.WaitTimeout(),
		closers:     []func() error{s.exec.Close},
	}
	return nil
}

func (s *Service) ensureLogger() {
	if s.logger != nil {
		return
	}
	logger := logrus.New()
	if level, err := logrus.ParseLevel(s.config.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if strings.EqualFold(s.config.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	s.logger = logger
}

func (s *Service) ensureBaseSetup() error {
	if s.policy == nil && s.config.Policy != nil {
		s.policy = policy.FromConfig(s.config.Policy)
	}
	if s.jobDAO != nil {
		return nil
	}
	if s.config.Store.Vendor == StoreFs {
		jobDAO, err := jfs.New(s.config.Store.BaseURL, s.logger)
		if err != nil {
			return err
		}
		s.jobDAO = jobDAO
	}
	return nil
}

// RegisterAction registers action services
func (s *Service) RegisterAction(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// RegisterRepository registers target repositories
func (s *Service) RegisterRepository(repositories ...target.Repository) {
	for i := range repositories {
		s.repositories.Register(repositories[i])
	}
}

// Runtime returns the runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// New creates a service
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// NewFromConfig creates a service from config; tracing is initialised when
// enabled.
func NewFromConfig(config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	opts := []Option{WithConfig(config)}
	if config.Tracing.Enabled {
		opts = append(opts, WithTracing(config.Tracing.ServiceName, config.Tracing.ServiceVersion, config.Tracing.OutputFile))
	}
	return New(append(opts, options...)...)
}
