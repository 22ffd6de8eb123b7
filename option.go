package fanout

import (
	"github.com/sirupsen/logrus"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/policy"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	"github.com/viant/fanout/service/event"
	"github.com/viant/fanout/service/target"
	"github.com/viant/fanout/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service
type Option func(s *Service)

// WithConfig sets the configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the logger used by every component
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithActions registers additional action services
func WithActions(services ...types.Service) Option {
	return func(s *Service) {
		s.extensionServices = append(s.extensionServices, services...)
	}
}

// WithRepositories registers target repositories
func WithRepositories(repositories ...target.Repository) Option {
	return func(s *Service) {
		s.extensionRepositories = append(s.extensionRepositories, repositories...)
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

// WithSubJobListener receives sub-job lifecycle events
func WithSubJobListener(handler func(*event.Event[*execution.SubJob])) Option {
	return func(s *Service) {
		s.subJobListener = handler
	}
}

// WithPolicy sets the default planning policy, applied when the plan context
// carries none.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; the first successful initialisation
// wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.tracingErr = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.tracingErr = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
