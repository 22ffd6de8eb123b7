package status

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"
	"github.com/viant/fanout/runtime/execution"
)

const (
	// FallbackName is displayed until the first sub-job exists
	FallbackName = "Bulk action"
	// Ellipsis marks the display input as a sample of a uniform batch
	Ellipsis = "..."

	defaultCacheSize = 1024
)

// Source exposes the sub-jobs of one aggregate job
type Source interface {
	JobID() string
	SubJobs(ctx context.Context) ([]*execution.SubJob, error)
}

// Description is the display name and input of an aggregate job
type Description struct {
	Name  string   `json:"name"`
	Input []string `json:"input,omitempty"`
}

// Aggregate is the derived status of an aggregate job
type Aggregate struct {
	Description
	Total  int                         `json:"total"`
	States map[execution.TaskState]int `json:"states"`
}

// Service derives and caches job descriptions
type Service struct {
	cache  *lru.Cache
	logger logrus.FieldLogger
}

// Option customises the status service
type Option func(s *Service)

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// Describe returns the description derived from the first sub-job; nil
// yields the fallback name with no input.
func (s *Service) Describe(first *execution.SubJob) *Description {
	if first == nil {
		return &Description{Name: FallbackName}
	}
	input := make([]string, 0, len(first.DisplayInput)+2)
	input = append(input, strings.ToLower(first.DisplayName))
	input = append(input, first.DisplayInput...)
	input = append(input, Ellipsis)
	return &Description{Name: first.DisplayName, Input: input}
}

// First returns the sub-job with the lowest sequence
func First(subJobs []*execution.SubJob) *execution.SubJob {
	var ret *execution.SubJob
	for _, candidate := range subJobs {
		if candidate == nil {
			continue
		}
		if ret == nil || candidate.Seq < ret.Seq {
			ret = candidate
		}
	}
	return ret
}

// Status returns the job description. Descriptions backed by a sub-job are
// cached: the first sub-job of a job never changes.
func (s *Service) Status(ctx context.Context, source Source) (*Description, error) {
	if cached, ok := s.cache.Get(source.JobID()); ok {
		return cached.(*Description), nil
	}
	subJobs, err := source.SubJobs(ctx)
	if err != nil {
		return nil, err
	}
	first := First(subJobs)
	ret := s.Describe(first)
	if first != nil {
		s.cache.Add(source.JobID(), ret)
	}
	return ret, nil
}

// HumanizedName returns the display name, the fallback name on lookup errors
func (s *Service) HumanizedName(ctx context.Context, source Source) string {
	description, err := s.Status(ctx, source)
	if err != nil {
		s.logger.WithError(err).WithField("job", source.JobID()).Warn("failed to describe bulk job")
		return FallbackName
	}
	return description.Name
}

// HumanizedInput returns the display input, nil until the first sub-job exists
func (s *Service) HumanizedInput(ctx context.Context, source Source) []string {
	description, err := s.Status(ctx, source)
	if err != nil {
		s.logger.WithError(err).WithField("job", source.JobID()).Warn("failed to describe bulk job")
		return nil
	}
	return append([]string(nil), description.Input...)
}

// Aggregate returns the description with per-state sub-job counts
func (s *Service) Aggregate(ctx context.Context, source Source, total int) (*Aggregate, error) {
	subJobs, err := source.SubJobs(ctx)
	if err != nil {
		return nil, err
	}
	description, err := s.Status(ctx, source)
	if err != nil {
		return nil, err
	}
	ret := &Aggregate{Description: *description, Total: total, States: map[execution.TaskState]int{}}
	for _, subJob := range subJobs {
		ret.States[subJob.GetState()]++
	}
	return ret, nil
}

// Forget drops the cached description of jobID
func (s *Service) Forget(jobID string) {
	s.cache.Remove(jobID)
}

// New creates a status service caching up to cacheSize descriptions
func New(cacheSize int, opts ...Option) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	ret := &Service{cache: cache, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}
