package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTargetNotFound is reported by actions invoked with a missing marker.
var ErrTargetNotFound = errors.New("target not found")

func NewMethodNotFoundError(name string) error {
	return fmt.Errorf("method %v not found", name)
}

func NewInvalidInputError(in interface{}) error {
	return fmt.Errorf("invalid input %T", in)
}

func NewInvalidOutputError(in interface{}) error {
	return fmt.Errorf("invalid output %T", in)
}
