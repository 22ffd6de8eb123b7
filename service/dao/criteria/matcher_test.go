package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/fanout/service/dao"
)

func TestMatch(t *testing.T) {
	fields := map[string]string{"JobID": "j1", "State": "failed"}
	field := func(name string) (string, bool) {
		value, ok := fields[name]
		return value, ok
	}
	testCases := []struct {
		name       string
		parameters []*dao.Parameter
		expect     bool
	}{
		{name: "no parameters", expect: true},
		{name: "single match", parameters: []*dao.Parameter{dao.NewParameter("JobID", "j1")}, expect: true},
		{name: "single mismatch", parameters: []*dao.Parameter{dao.NewParameter("JobID", "j2")}, expect: false},
		{name: "any of", parameters: []*dao.Parameter{dao.NewParameter("State", "completed", "failed")}, expect: true},
		{name: "all must match", parameters: []*dao.Parameter{dao.NewParameter("JobID", "j1"), dao.NewParameter("State", "completed")}, expect: false},
		{name: "unknown ignored", parameters: []*dao.Parameter{dao.NewParameter("Other", "x")}, expect: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Match(field, tc.parameters))
		})
	}
}
