package extension

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/viant/fanout/model/types"
)

// ErrUnknownAction is returned when an action kind cannot be resolved.
var ErrUnknownAction = errors.New("unknown action")

// Actions provides action service
type Actions struct {
	services map[string]types.Service
	mux      sync.RWMutex
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register registers a service
func (s *Actions) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.services[service.Name()] = service
}

// Resolve returns the service, the method signature and the executable of an
// action kind.
func (s *Actions) Resolve(action types.ActionKind) (types.Service, *types.Signature, types.Executable, error) {
	service := s.Lookup(action.Service)
	if service == nil {
		return nil, nil, nil, errors.Wrapf(ErrUnknownAction, "service %v not found", action.Service)
	}
	signature := service.Methods().Lookup(action.Method)
	if signature == nil {
		return nil, nil, nil, errors.Wrapf(ErrUnknownAction, "method %v not found for service %v", action.Method, action.Service)
	}
	method, err := service.Method(action.Method)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(ErrUnknownAction, "failed to find method %v for service %v: %v", action.Method, action.Service, err)
	}
	return service, signature, method, nil
}

// NewActions creates a new action registry
func NewActions(services ...types.Service) *Actions {
	ret := &Actions{services: make(map[string]types.Service)}
	for _, service := range services {
		if service != nil {
			ret.Register(service)
		}
	}
	return ret
}
