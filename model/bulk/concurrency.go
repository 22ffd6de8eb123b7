package bulk

import (
	"math"
	"strconv"
	"strings"
)

// ConcurrencyLimitKey is the shared-argument key carrying the concurrency cap.
const ConcurrencyLimitKey = "concurrency_limit"

// ExtractConcurrency derives the concurrency policy. The first shared argument
// that is a map with ConcurrencyLimitKey takes precedence over explicit; nil
// means no cap.
func ExtractConcurrency(args []interface{}, explicit *int) *int {
	for _, arg := range args {
		value, ok := lookupLimit(arg)
		if !ok {
			continue
		}
		if limit, ok := asPositiveInt(value); ok {
			return &limit
		}
		break
	}
	if explicit != nil && *explicit > 0 {
		limit := *explicit
		return &limit
	}
	return nil
}

func lookupLimit(arg interface{}) (interface{}, bool) {
	switch actual := arg.(type) {
	case map[string]interface{}:
		value, ok := actual[ConcurrencyLimitKey]
		return value, ok
	case map[string]int:
		value, ok := actual[ConcurrencyLimitKey]
		return value, ok
	case map[interface{}]interface{}:
		value, ok := actual[ConcurrencyLimitKey]
		return value, ok
	}
	return nil, false
}

func asPositiveInt(value interface{}) (int, bool) {
	var result int
	switch actual := value.(type) {
	case int:
		result = actual
	case int8:
		result = int(actual)
	case int16:
		result = int(actual)
	case int32:
		result = int(actual)
	case int64:
		result = int(actual)
	case uint:
		result = int(actual)
	case uint8:
		result = int(actual)
	case uint16:
		result = int(actual)
	case uint32:
		result = int(actual)
	case uint64:
		result = int(actual)
	case float32:
		return asPositiveInt(float64(actual))
	case float64:
		if actual != math.Trunc(actual) {
			return 0, false
		}
		result = int(actual)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(actual))
		if err != nil {
			return 0, false
		}
		result = parsed
	case *int:
		if actual == nil {
			return 0, false
		}
		result = *actual
	default:
		return 0, false
	}
	return result, result > 0
}
