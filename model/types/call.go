package types

// Call is the input handed to an action executable for one sub-job.
type Call struct {
	JobID    string
	SubJobID string
	// Target is nil for a missing marker: the requested target no longer
	// existed when its batch was resolved.
	Target Target
	// Args holds the shared arguments; shared options, when present, are the
	// trailing element.
	Args []interface{}
	// HasOptions marks the trailing element of Args as the shared options.
	// A trailing map in Args is a plain argument otherwise.
	HasOptions bool
}

// Missing returns true when the call was triggered for a missing marker
func (c *Call) Missing() bool {
	return c.Target == nil
}

// RequireTarget returns ErrTargetNotFound for a missing marker
func (c *Call) RequireTarget() (Target, error) {
	if c.Target == nil {
		return nil, ErrTargetNotFound
	}
	return c.Target, nil
}

// Options returns the trailing shared-options argument, nil unless HasOptions
// is set.
func (c *Call) Options() map[string]interface{} {
	if !c.HasOptions || len(c.Args) == 0 {
		return nil
	}
	if options, ok := c.Args[len(c.Args)-1].(map[string]interface{}); ok {
		return options
	}
	return nil
}

// Strings returns all string arguments in order
func (c *Call) Strings() []string {
	var result []string
	for _, arg := range c.Args {
		if text, ok := arg.(string); ok {
			result = append(result, text)
		}
	}
	return result
}
