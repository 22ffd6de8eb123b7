package bulk

import "github.com/pkg/errors"

var (
	// ErrEmptyTargetSet is returned when a bulk request names no targets.
	ErrEmptyTargetSet = errors.New("empty bulk action")

	// ErrHeterogeneousTargetSet is returned when targets are of different kinds.
	ErrHeterogeneousTargetSet = errors.New("the targets are of different types")

	// ErrNilTarget is returned when the target set contains a nil element.
	ErrNilTarget = errors.New("nil target")

	// ErrInvalidWindow is returned for a negative window offset or size.
	ErrInvalidWindow = errors.New("invalid batch window")
)
