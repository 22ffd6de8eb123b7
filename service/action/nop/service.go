package nop

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/fanout/model/types"
)

const name = "nop"

// Service does nothing for every target; it is used to exercise fan-out
// plumbing without side effects.
type Service struct{}

// Output represents nop output
type Output struct {
	TargetID string `json:"targetId,omitempty"`
}

// New creates a new nop service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "nop",
			Title:       "Nop",
			Description: "Performs no operation and returns immediately.",
			Input:       reflect.TypeOf(&types.Call{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	if strings.EqualFold(name, "nop") {
		return s.nop, nil
	}
	return nil, types.NewMethodNotFoundError(name)
}

func (s *Service) nop(ctx context.Context, in, out interface{}) error {
	call, ok := in.(*types.Call)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	if output, ok := out.(*Output); ok && call.Target != nil {
		output.TargetID = call.Target.TargetID()
	}
	return nil
}
