package exec

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/fanout/model/types"
)

const Name = "exec"

func (s *Service) Name() string {
	return Name
}

func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:  "run",
			Title: "Run",
			Description: `Runs the string arguments as shell commands on every target host.
Each argument is started as an independent command; a non-zero exit status
fails the sub-job unless the abortOnError option is false.`,
			Input:  reflect.TypeOf(&types.Call{}),
			Output: reflect.TypeOf(&Output{}),
		}}
}

// Humanize renders "Run" with the commands as display input
func (s *Service) Humanize(method string, call *types.Call) (string, []string) {
	input := []string{types.LabelOf(call.Target)}
	return "Run", append(input, call.Strings()...)
}

func (s *Service) run(ctx context.Context, in, out interface{}) error {
	call, ok := in.(*types.Call)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	input, err := NewInput(call)
	if err != nil {
		return err
	}
	return s.Execute(ctx, input, output)
}

// Method returns method by Name
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "run":
		return s.run, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}
