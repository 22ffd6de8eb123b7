package extension

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/fanout/service/target"
)

// ErrUnknownTargetKind is returned when no repository serves a target kind.
var ErrUnknownTargetKind = errors.New("unknown target kind")

// Repositories maps target kinds to the repositories resolving them
type Repositories struct {
	repositories map[string]target.Repository
	mux          sync.RWMutex
}

// Register registers a repository under its kind
func (r *Repositories) Register(repository target.Repository) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.repositories[repository.Kind()] = repository
}

// Lookup returns the repository for kind
func (r *Repositories) Lookup(kind string) (target.Repository, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret, ok := r.repositories[kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTargetKind, "%q", kind)
	}
	return ret, nil
}

// NewRepositories creates a repository registry
func NewRepositories(repositories ...target.Repository) *Repositories {
	ret := &Repositories{repositories: make(map[string]target.Repository)}
	for _, repository := range repositories {
		if repository != nil {
			ret.Register(repository)
		}
	}
	return ret
}
