package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
	"github.com/viant/fanout/service/dao/criteria"
)

// Service implements a filesystem-based job storage; the frozen bulk request
// is persisted with its job so that a run can be replayed from storage.
type Service struct {
	basePath string
	fs       afs.Service
	logger   logrus.FieldLogger
	mu       sync.RWMutex
}

// Ensure Service implements dao.Service
var _ dao.Service[string, execution.Job] = (*Service)(nil)

// Save persists a job to the filesystem
func (s *Service) Save(ctx context.Context, job *execution.Job) error {
	if job == nil {
		return dao.ErrNilEntity
	}
	if job.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(job.Clone())
	if err != nil {
		return errors.Wrap(err, "failed to marshal job")
	}

	filePath := s.jobPath(job.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to save job to file %s", filePath)
	}
	return nil
}

// Load retrieves a job from the filesystem
func (s *Service) Load(ctx context.Context, id string) (*execution.Job, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.jobPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check if job exists")
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read job file")
	}

	job := &execution.Job{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal job data")
	}
	return job, nil
}

// Delete removes a job from the filesystem
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.jobPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return errors.Wrap(err, "failed to check if job exists")
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return errors.Wrap(err, "failed to delete job file")
	}
	return nil
}

// List returns jobs matching parameters (State, Action)
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*execution.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list job files")
	}

	var jobs []*execution.Job
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to read job file")
			continue
		}
		job := &execution.Job{}
		if err := json.Unmarshal(data, job); err != nil {
			s.logger.WithError(err).WithField("url", object.URL()).Warn("failed to unmarshal job file")
			continue
		}
		if !criteria.Match(fields(job), parameters) {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func fields(job *execution.Job) criteria.Field {
	return func(name string) (string, bool) {
		switch name {
		case "State":
			return string(job.State), true
		case "Action":
			if job.Request == nil {
				return "", true
			}
			return job.Request.Action.String(), true
		}
		return "", false
	}
}

// jobPath returns the file path for a job
func (s *Service) jobPath(id string) string {
	return url.Join(s.basePath, path.Base(fmt.Sprintf("%s.json", id)))
}

// New creates a new filesystem job storage service
func New(basePath string, logger logrus.FieldLogger) (*Service, error) {
	if basePath == "" {
		return nil, errors.New("base path cannot be empty")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	fs := afs.New()
	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, errors.Wrap(err, "failed to create base directory")
		}
	}

	return &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fs,
		logger:   logger,
	}, nil
}
