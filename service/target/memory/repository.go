package memory

import (
	"context"
	"sync"

	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/service/target"
)

// Repository keeps targets of one kind in memory. Lookup returns targets in
// insertion order, not in the order of the requested identifiers.
type Repository struct {
	kind    string
	order   []string
	targets map[string]types.Target
	mux     sync.RWMutex
}

var _ target.Repository = (*Repository)(nil)

// Kind returns the target kind
func (r *Repository) Kind() string {
	return r.kind
}

// Save stores or replaces targets
func (r *Repository) Save(targets ...types.Target) {
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, aTarget := range targets {
		if aTarget == nil {
			continue
		}
		id := aTarget.TargetID()
		if _, ok := r.targets[id]; !ok {
			r.order = append(r.order, id)
		}
		r.targets[id] = aTarget
	}
}

// Delete removes targets
func (r *Repository) Delete(ids ...string) {
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, id := range ids {
		if _, ok := r.targets[id]; !ok {
			continue
		}
		delete(r.targets, id)
		for i, candidate := range r.order {
			if candidate == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// Lookup returns existing targets whose identifier is in ids
func (r *Repository) Lookup(ctx context.Context, ids []string) ([]types.Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}
	r.mux.RLock()
	defer r.mux.RUnlock()
	var ret []types.Target
	for _, id := range r.order {
		if requested[id] {
			ret = append(ret, r.targets[id])
		}
	}
	return ret, nil
}

// New creates a memory repository for kind
func New(kind string, targets ...types.Target) *Repository {
	ret := &Repository{kind: kind, targets: make(map[string]types.Target)}
	ret.Save(targets...)
	return ret
}
