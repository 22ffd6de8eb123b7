package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"path"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/service/target"
)

// Repository resolves targets stored as <baseURL>/<id>.json resources on any
// afs supported storage.
type Repository struct {
	kind    string
	baseURL string
	fs      afs.Service
}

var _ target.Repository = (*Repository)(nil)

// Kind returns the target kind
func (r *Repository) Kind() string {
	return r.kind
}

// Save persists a resource
func (r *Repository) Save(ctx context.Context, resource *types.Resource) error {
	if resource == nil || resource.ID == "" {
		return errors.New("resource id was empty")
	}
	if resource.Kind == "" {
		resource.Kind = r.kind
	}
	data, err := json.Marshal(resource)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %v", resource.ID)
	}
	URL := r.resourceURL(resource.ID)
	if err = r.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "failed to save target %v", URL)
	}
	return nil
}

// Delete removes a resource; deleting a missing resource is not an error
func (r *Repository) Delete(ctx context.Context, id string) error {
	URL := r.resourceURL(id)
	exists, err := r.fs.Exists(ctx, URL)
	if err != nil || !exists {
		return err
	}
	return r.fs.Delete(ctx, URL)
}

// Lookup loads the resources that exist. Storage errors other than absence
// are returned since the caller needs an authoritative missing count.
func (r *Repository) Lookup(ctx context.Context, ids []string) ([]types.Target, error) {
	var ret []types.Target
	for _, id := range target.Unique(ids) {
		URL := r.resourceURL(id)
		exists, err := r.fs.Exists(ctx, URL)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to check target %v", URL)
		}
		if !exists {
			continue
		}
		data, err := r.fs.DownloadWithURL(ctx, URL)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read target %v", URL)
		}
		resource := &types.Resource{}
		if err = json.Unmarshal(data, resource); err != nil {
			return nil, errors.Wrapf(err, "failed to decode target %v", URL)
		}
		if resource.ID == "" {
			resource.ID = id
		}
		if resource.Kind == "" {
			resource.Kind = r.kind
		}
		if resource.Kind != r.kind {
			continue
		}
		ret = append(ret, resource)
	}
	return ret, nil
}

func (r *Repository) resourceURL(id string) string {
	return url.Join(r.baseURL, path.Base(id)+".json")
}

// New creates a filesystem repository
func New(kind, baseURL string) (*Repository, error) {
	if baseURL == "" {
		return nil, errors.New("base URL cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	if exists, _ := fs.Exists(ctx, baseURL); !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, errors.Wrapf(err, "failed to create base directory %v", baseURL)
		}
	}
	return &Repository{kind: kind, baseURL: url.Normalize(baseURL, file.Scheme), fs: fs}, nil
}
