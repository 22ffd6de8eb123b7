package types

// Target is a live object a bulk action is applied to. All targets of one
// bulk request share the same kind; the kind is the key of the repository
// able to resolve identifiers back into targets.
type Target interface {
	TargetID() string
	TargetKind() string
}

// Labeler is optionally implemented by targets with a display label.
type Labeler interface {
	Label() string
}

// Resource is a generic, serialisable target
type Resource struct {
	ID     string            `json:"id" yaml:"id"`
	Kind   string            `json:"kind" yaml:"kind"`
	Name   string            `json:"name,omitempty" yaml:"name,omitempty"`
	Labels map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

func (r *Resource) TargetID() string   { return r.ID }
func (r *Resource) TargetKind() string { return r.Kind }

// Label returns name or ID
func (r *Resource) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// LabelOf returns a display label for a target, empty for nil
func LabelOf(target Target) string {
	if target == nil {
		return ""
	}
	if labeler, ok := target.(Labeler); ok {
		return labeler.Label()
	}
	return target.TargetID()
}
