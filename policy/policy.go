// Package policy provides a simple, optional per-action approval layer that can
// be attached to a bulk plan via context.  Planners that do not embed the
// Policy in their context keep the "auto" behaviour.

package policy

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// Execution modes recognised by the planner.
const (
	ModeAsk  = "ask"  // ask user before planning an action
	ModeAuto = "auto" // plan automatically (default)
	ModeDeny = "deny" // block planning
)

// Rescue controls how a failed sub-job affects its aggregate job.
type Rescue string

const (
	// RescueSkip records the failure and keeps going; the aggregate completes.
	RescueSkip Rescue = "skip"
	// RescueFail keeps going as well but the aggregate ends failed.
	RescueFail Rescue = "fail"
)

// IsValid returns true for known strategies
func (r Rescue) IsValid() bool {
	return r == RescueSkip || r == RescueFail
}

// ErrActionDenied is returned when a policy rejects an action.
var ErrActionDenied = errors.New("action denied by policy")

// AskFunc is invoked when Mode==ask.  Returning true approves the action, false
// rejects it.  Implementations MAY mutate the policy (for example, switching to
// ModeAuto after the first approval).
type AskFunc func(
	ctx context.Context,
	action string, // service.method
	options map[string]interface{}, // shared named parameters, may be nil
	p *Policy,
) bool

// Policy represents the approval settings for bulk planning.
//
//   - Mode controls the high-level behaviour (ask / auto / deny).
//   - AllowList, BlockList allow coarse filtering regardless of Mode.
//   - Ask is only used when Mode==ask.
//
// A nil *Policy means "plan everything automatically".
type Policy struct {
	Mode      string   // ask / auto / deny      (default = auto)
	AllowList []string // whitelist (empty => all)
	BlockList []string // blacklist
	Ask       AskFunc  // used only when Mode==ask
}

// Config represents the declarative, serialisable part of a Policy.
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:      p.Mode,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy (without
// AskFunc).
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// IsAllowed evaluates AllowList / BlockList.  Both lists match by exact string
// comparison (case-insensitive) of the fully-qualified action name
// "service.method".
func (p *Policy) IsAllowed(action string) bool {
	if p == nil {
		return true
	}
	normalized := strings.ToLower(action)
	// BlockList has priority.
	for _, b := range p.BlockList {
		if normalized == strings.ToLower(b) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, a := range p.AllowList {
		if normalized == strings.ToLower(a) {
			return true
		}
	}
	return false
}

// Check returns ErrActionDenied unless the action may be planned
func (p *Policy) Check(ctx context.Context, action string, options map[string]interface{}) error {
	if p == nil {
		return nil
	}
	if !p.IsAllowed(action) {
		return errors.Wrapf(ErrActionDenied, "%s is not allowed", action)
	}
	switch strings.ToLower(p.Mode) {
	case ModeDeny:
		return errors.Wrapf(ErrActionDenied, "%s: planning disabled", action)
	case ModeAsk:
		if p.Ask == nil || !p.Ask(ctx, action, options, p) {
			return errors.Wrapf(ErrActionDenied, "%s was not approved", action)
		}
	}
	return nil
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy, nil when absent.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
