package criteria

import (
	"github.com/viant/fanout/service/dao"
)

// Field returns an entity attribute used for filtering
type Field func(name string) (string, bool)

// Match returns true when every parameter naming a known field matches it.
// Unknown parameter names are ignored.
func Match(field Field, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		actual, ok := field(parameter.Name)
		if !ok {
			continue
		}
		if !matches(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matches(actual string, expected interface{}) bool {
	switch value := expected.(type) {
	case string:
		return actual == value
	case []string:
		for _, candidate := range value {
			if actual == candidate {
				return true
			}
		}
		return false
	}
	return true
}
