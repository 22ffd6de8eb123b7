package executor

import "github.com/pkg/errors"

var (
	ErrNilCall   = errors.New("nil sub-job call")
	ErrNilSubJob = errors.New("nil sub-job")
	ErrPanic     = errors.New("action panicked")
)
