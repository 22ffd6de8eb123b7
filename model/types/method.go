package types

import (
	"context"
	"reflect"
	"strings"
)

type Signatures []Signature

func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if strings.EqualFold(sig.Name, name) {
			return sig
		}
	}
	return nil
}

// Signature	method signature
type Signature struct {
	Name        string
	Title       string // human readable action name, i.e. "Reboot"
	Description string
	Input       reflect.Type
	Output      reflect.Type
}

// DisplayName returns the title or the method name when no title is set
func (s *Signature) DisplayName() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// Executable is a function that can be executed; input is always *Call
type Executable func(context context.Context, input, output interface{}) error
