package policy

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_Check(t *testing.T) {
	approve := func(ctx context.Context, action string, options map[string]interface{}, p *Policy) bool {
		return options["approved"] == true
	}
	testCases := []struct {
		description string
		policy      *Policy
		action      string
		options     map[string]interface{}
		denied      bool
	}{
		{description: "nil policy", action: "host.reboot"},
		{description: "auto", policy: &Policy{Mode: ModeAuto}, action: "host.reboot"},
		{description: "deny mode", policy: &Policy{Mode: ModeDeny}, action: "host.reboot", denied: true},
		{description: "block list", policy: &Policy{BlockList: []string{"Host.Reboot"}}, action: "host.reboot", denied: true},
		{description: "allow list miss", policy: &Policy{AllowList: []string{"host.ping"}}, action: "host.reboot", denied: true},
		{description: "allow list hit", policy: &Policy{AllowList: []string{"host.reboot"}}, action: "host.reboot"},
		{description: "ask approved", policy: &Policy{Mode: ModeAsk, Ask: approve}, action: "host.reboot", options: map[string]interface{}{"approved": true}},
		{description: "ask rejected", policy: &Policy{Mode: ModeAsk, Ask: approve}, action: "host.reboot", denied: true},
		{description: "ask without func", policy: &Policy{Mode: ModeAsk}, action: "host.reboot", denied: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := WithPolicy(context.Background(), testCase.policy)
			err := FromContext(ctx).Check(ctx, testCase.action, testCase.options)
			if testCase.denied {
				assert.True(t, errors.Is(err, ErrActionDenied), testCase.description)
				return
			}
			assert.NoError(t, err, testCase.description)
		})
	}
}

func TestConfigRoundTrip(t *testing.T) {
	p := FromConfig(&Config{Mode: ModeDeny, BlockList: []string{"a.b"}})
	assert.Equal(t, ModeDeny, p.Mode)
	assert.Equal(t, []string{"a.b"}, ToConfig(p).BlockList)
	assert.True(t, RescueSkip.IsValid())
	assert.False(t, Rescue("retry").IsValid())
}
