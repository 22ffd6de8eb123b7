package exec

import (
	"context"
	"fmt"
	osexec "os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fanout/model/types"
	"golang.org/x/sync/errgroup"
)

func TestHostOf(t *testing.T) {
	testCases := []struct {
		description string
		target      types.Target
		expect      *Host
	}{
		{description: "localhost id", target: &types.Resource{ID: "localhost"}, expect: &Host{URL: "bash://localhost/"}},
		{description: "plain id", target: &types.Resource{ID: "10.0.0.1"}, expect: &Host{URL: "ssh://10.0.0.1"}},
		{description: "url id", target: &types.Resource{ID: "ssh://web:2222"}, expect: &Host{URL: "ssh://web:2222"}},
		{
			description: "labels",
			target:      &types.Resource{ID: "1", Labels: map[string]string{LabelURL: "ssh://web-1", LabelCredentials: "ops"}},
			expect:      &Host{URL: "ssh://web-1", Credentials: "ops"},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, HostOf(testCase.target))
		})
	}
}

func TestNewInput(t *testing.T) {
	call := &types.Call{
		Target:     &types.Resource{ID: "localhost"},
		HasOptions: true,
		Args:       []interface{}{"echo a", "echo b", map[string]interface{}{
			"timeoutMs":    float64(500),
			"abortOnError": false,
			"env":          map[string]interface{}{"A": "1"},
			"workdir":      "/tmp",
		}},
	}
	input, err := NewInput(call)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo a", "echo b"}, input.Commands)
	assert.Equal(t, 500, input.TimeoutMs)
	assert.False(t, input.AbortOnError)
	assert.Equal(t, map[string]string{"A": "1"}, input.Env)
	assert.Equal(t, "/tmp", input.Workdir)

	_, err = NewInput(&types.Call{})
	assert.ErrorIs(t, err, types.ErrTargetNotFound)
}

func TestService_Humanize(t *testing.T) {
	name, input := New().Humanize("run", &types.Call{Target: &types.Resource{ID: "1", Name: "web-1"}, Args: []interface{}{"uptime"}})
	assert.Equal(t, "Run", name)
	assert.Equal(t, []string{"web-1", "uptime"}, input)
}

func TestService_RunLocal(t *testing.T) {
	if _, err := osexec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	srv := New()
	defer srv.Close()
	method, err := srv.Method("run")
	require.NoError(t, err)
	output := &Output{}
	err = method(context.Background(), &types.Call{
		Target: &types.Resource{ID: "localhost"},
		Args:   []interface{}{"echo fanout"},
	}, output)
	require.NoError(t, err)
	assert.Equal(t, "bash://localhost/", output.Host)
	assert.Contains(t, output.Stdout, "fanout")
}

func TestInput_wrap(t *testing.T) {
	testCases := []struct {
		description string
		input       *Input
		expect      string
	}{
		{description: "plain", input: &Input{}, expect: "(uptime)"},
		{description: "workdir", input: &Input{Workdir: "/tmp"}, expect: "(cd '/tmp' && uptime)"},
		{
			description: "env sorted and quoted",
			input:       &Input{Env: map[string]string{"B": "it's", "A": "1", "bad-name": "x"}},
			expect:      `(export A='1' && export B='it'\''s' && uptime)`,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			assert.Equal(t, testCase.expect, testCase.input.wrap("uptime"))
		})
	}
}

func runLocal(ctx context.Context, method types.Executable, args ...interface{}) (*Output, error) {
	output := &Output{}
	call := &types.Call{Target: &types.Resource{ID: "localhost"}, Args: args}
	if len(args) > 0 {
		_, call.HasOptions = args[len(args)-1].(map[string]interface{})
	}
	err := method(ctx, call, output)
	return output, err
}

func TestService_RunLocalConcurrently(t *testing.T) {
	if _, err := osexec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	srv := New()
	defer srv.Close()
	method, err := srv.Method("run")
	require.NoError(t, err)

	const units = 16
	outputs := make([]string, units)
	group, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < units; i++ {
		i := i
		group.Go(func() error {
			output, err := runLocal(ctx, method, fmt.Sprintf("echo token%d", i), map[string]interface{}{"timeoutMs": 10000})
			if err != nil {
				return err
			}
			outputs[i] = output.Stdout
			return nil
		})
	}
	require.NoError(t, group.Wait())
	for i, actual := range outputs {
		assert.Equal(t, fmt.Sprintf("token%d", i), actual)
	}
}

func TestService_RunLocalIsolatesState(t *testing.T) {
	if _, err := osexec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	srv := New()
	defer srv.Close()
	method, err := srv.Method("run")
	require.NoError(t, err)
	ctx := context.Background()

	first, err := runLocal(ctx, method, "pwd", "echo $UNIT", "cd /", map[string]interface{}{
		"workdir": "/tmp",
		"env":     map[string]interface{}{"UNIT": "one"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/tmp\none", first.Stdout)

	second, err := runLocal(ctx, method, "echo ${UNIT:-unset}", map[string]interface{}{"env": map[string]interface{}{"OTHER": "two"}})
	require.NoError(t, err)
	assert.Equal(t, "unset", second.Stdout)

	third, err := runLocal(ctx, method, "echo $OTHER", map[string]interface{}{"env": map[string]interface{}{"OTHER": "three"}})
	require.NoError(t, err)
	assert.Equal(t, "three", third.Stdout)
}
