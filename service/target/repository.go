// Package target defines the data-store capability resolving target
// identifiers back into live targets at execution time.
package target

import (
	"context"

	"github.com/viant/fanout/model/types"
)

// Repository resolves identifiers of one target kind. Lookup returns the
// targets that still exist; identifiers that cannot be resolved are simply
// absent from the result, which need not follow the order of ids.
type Repository interface {
	Kind() string
	Lookup(ctx context.Context, ids []string) ([]types.Target, error)
}

// Unique returns ids without duplicates, preserving first occurrence order
func Unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	ret := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		ret = append(ret, id)
	}
	return ret
}
