package types

import (
	"fmt"
	"strings"
)

// ActionKind identifies the action to run per target: a registered service and
// one of its methods.
type ActionKind struct {
	Service string `json:"service" yaml:"service"`
	Method  string `json:"method" yaml:"method"`
}

// NewActionKind parses "service.method"
func NewActionKind(encoded string) (ActionKind, error) {
	idx := strings.LastIndex(encoded, ".")
	if idx <= 0 || idx == len(encoded)-1 {
		return ActionKind{}, fmt.Errorf("invalid action %q, expected service.method", encoded)
	}
	return ActionKind{Service: encoded[:idx], Method: encoded[idx+1:]}, nil
}

func (a ActionKind) String() string {
	return a.Service + "." + a.Method
}

// IsEmpty returns true when either part is missing
func (a ActionKind) IsEmpty() bool {
	return a.Service == "" || a.Method == ""
}
