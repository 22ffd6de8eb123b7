package bulk

import (
	"reflect"

	"github.com/pkg/errors"
	"github.com/viant/fanout/model/types"
)

// Validate checks that targets is non-empty and homogeneous: one concrete type
// and one kind. It returns the common target kind.
func Validate(targets []types.Target) (string, error) {
	if len(targets) == 0 {
		return "", ErrEmptyTargetSet
	}
	kind := ""
	var rType reflect.Type
	for i, target := range targets {
		if target == nil {
			return "", errors.Wrapf(ErrNilTarget, "target at position %d", i)
		}
		if i == 0 {
			kind = target.TargetKind()
			rType = reflect.TypeOf(target)
			continue
		}
		if candidate := reflect.TypeOf(target); candidate != rType {
			return "", errors.Wrapf(ErrHeterogeneousTargetSet, "got %v and %v", rType, candidate)
		}
		if candidate := target.TargetKind(); candidate != kind {
			return "", errors.Wrapf(ErrHeterogeneousTargetSet, "got %q and %q", kind, candidate)
		}
	}
	return kind, nil
}
