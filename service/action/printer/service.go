package printer

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/viant/fanout/model/types"
)

const name = "printer"

// Service prints one line per target
type Service struct {
	writer io.Writer
	mux    sync.Mutex
}

// Output represents printed line
type Output struct {
	Line string `json:"line"`
}

// New creates a printer writing to w, os.Stdout when nil
func New(w io.Writer) *Service {
	if w == nil {
		w = os.Stdout
	}
	return &Service{writer: w}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "print",
			Title:       "Print",
			Description: "Prints the target label followed by the string arguments.",
			Input:       reflect.TypeOf(&types.Call{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "print":
		return s.print, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) print(ctx context.Context, in, out interface{}) error {
	call, ok := in.(*types.Call)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	target, err := call.RequireTarget()
	if err != nil {
		return err
	}
	line := strings.TrimSpace(types.LabelOf(target) + " " + strings.Join(call.Strings(), " "))
	s.mux.Lock()
	_, err = fmt.Fprintln(s.writer, line)
	s.mux.Unlock()
	if err != nil {
		return err
	}
	if output, ok := out.(*Output); ok {
		output.Line = line
	}
	return nil
}
