package bulk

import (
	"github.com/viant/fanout/internal/clock"
	"github.com/viant/fanout/internal/idgen"
	"github.com/viant/fanout/model/types"
)

// PlanInput is the structured call shape of a bulk request.
type PlanInput struct {
	Action  types.ActionKind
	Targets []types.Target
	Args    []interface{}
	Options map[string]interface{}
	// ConcurrencyLimit is the explicit cap; a concurrency_limit entry in Args
	// takes precedence.
	ConcurrencyLimit *int
}

// Build validates targets and freezes the request
func Build(input *PlanInput) (*Request, error) {
	kind, err := Validate(input.Targets)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(input.Targets))
	for i, target := range input.Targets {
		ids[i] = target.TargetID()
	}
	ret := &Request{
		ID:               idgen.New(),
		Action:           input.Action,
		TargetIDs:        ids,
		TargetKind:       kind,
		ConcurrencyLimit: ExtractConcurrency(input.Args, input.ConcurrencyLimit),
		CreatedAt:        clock.Now(),
	}
	if len(input.Args) > 0 {
		ret.Args = append([]interface{}(nil), input.Args...)
	}
	if len(input.Options) > 0 {
		ret.Options = make(map[string]interface{}, len(input.Options))
		for k, v := range input.Options {
			ret.Options[k] = v
		}
	}
	return ret, nil
}
