package bulk

import "github.com/viant/fanout/model/types"

// Unit is one resolved unit of work: a live target or a missing marker.
type Unit struct {
	Target types.Target
}

// Missing returns true for a missing marker
func (u *Unit) Missing() bool {
	return u == nil || u.Target == nil
}

// TargetID returns the live target identifier, empty for a missing marker
func (u *Unit) TargetID() string {
	if u.Missing() {
		return ""
	}
	return u.Target.TargetID()
}
