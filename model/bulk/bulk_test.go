package bulk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fanout/model/types"
)

type host struct {
	id string
}

func (h *host) TargetID() string   { return h.id }
func (h *host) TargetKind() string { return "host" }

func intPtr(v int) *int { return &v }

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		targets   []types.Target
		expectErr error
		expect    string
	}{
		{name: "empty", targets: nil, expectErr: ErrEmptyTargetSet},
		{name: "nil element", targets: []types.Target{&host{id: "1"}, nil}, expectErr: ErrNilTarget},
		{name: "mixed kinds", targets: []types.Target{&host{id: "1"}, &types.Resource{ID: "2", Kind: "vm"}}, expectErr: ErrHeterogeneousTargetSet},
		{name: "same kind different types", targets: []types.Target{&host{id: "1"}, &types.Resource{ID: "2", Kind: "host"}}, expectErr: ErrHeterogeneousTargetSet},
		{name: "homogeneous", targets: []types.Target{&host{id: "1"}, &host{id: "2"}}, expect: "host"},
		{name: "single", targets: []types.Target{&types.Resource{ID: "1", Kind: "vm"}}, expect: "vm"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, err := Validate(tc.targets)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, kind)
		})
	}
}

func TestExtractConcurrency(t *testing.T) {
	testCases := []struct {
		name     string
		args     []interface{}
		explicit *int
		expect   *int
	}{
		{name: "embedded option", args: []interface{}{map[string]interface{}{"concurrency_limit": 5}}, expect: intPtr(5)},
		{name: "explicit only", args: []interface{}{"uptime"}, explicit: intPtr(3), expect: intPtr(3)},
		{name: "neither", args: []interface{}{"uptime"}},
		{name: "embedded wins", args: []interface{}{map[string]interface{}{"concurrency_limit": 2}}, explicit: intPtr(3), expect: intPtr(2)},
		{name: "first matching map", args: []interface{}{map[string]interface{}{"force": true}, map[string]int{"concurrency_limit": 7}, map[string]interface{}{"concurrency_limit": 9}}, expect: intPtr(7)},
		{name: "json float", args: []interface{}{map[string]interface{}{"concurrency_limit": float64(4)}}, expect: intPtr(4)},
		{name: "yaml map", args: []interface{}{map[interface{}]interface{}{"concurrency_limit": "6"}}, expect: intPtr(6)},
		{name: "nil value falls back", args: []interface{}{map[string]interface{}{"concurrency_limit": nil}}, explicit: intPtr(3), expect: intPtr(3)},
		{name: "non positive explicit", explicit: intPtr(0)},
		{name: "fractional ignored", args: []interface{}{map[string]interface{}{"concurrency_limit": 1.5}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := ExtractConcurrency(tc.args, tc.explicit)
			if tc.expect == nil {
				assert.Nil(t, actual)
				return
			}
			require.NotNil(t, actual)
			assert.Equal(t, *tc.expect, *actual)
		})
	}
}

func TestBuild(t *testing.T) {
	hostA, hostB := &host{id: "a"}, &host{id: "b"}

	t.Run("plan with embedded limit", func(t *testing.T) {
		options := map[string]interface{}{"force": true}
		args := []interface{}{map[string]interface{}{"concurrency_limit": 2}}
		request, err := Build(&PlanInput{
			Action:  types.ActionKind{Service: "host", Method: "reboot"},
			Targets: []types.Target{hostA, hostB},
			Args:    args,
			Options: options,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, request.ID)
		assert.Equal(t, []string{"a", "b"}, request.TargetIDs)
		assert.Equal(t, "host", request.TargetKind)
		assert.Equal(t, 2, request.TotalCount())
		require.NotNil(t, request.ConcurrencyLimit)
		assert.Equal(t, 2, *request.ConcurrencyLimit)

		options["force"] = false
		assert.Equal(t, true, request.Options["force"], "request must not alias caller options")
		assert.Equal(t, []interface{}{args[0], request.Options}, request.SharedArgs())
	})

	t.Run("duplicates preserved", func(t *testing.T) {
		request, err := Build(&PlanInput{Targets: []types.Target{hostA, hostB, hostA}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "a"}, request.TargetIDs)
		assert.Nil(t, request.ConcurrencyLimit)
		assert.Empty(t, request.SharedArgs())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Build(&PlanInput{})
		assert.ErrorIs(t, err, ErrEmptyTargetSet)
	})

	t.Run("heterogeneous", func(t *testing.T) {
		_, err := Build(&PlanInput{Targets: []types.Target{hostA, &types.Resource{ID: "x", Kind: "vm"}}})
		assert.ErrorIs(t, err, ErrHeterogeneousTargetSet)
	})
}

func TestRequest_Batch(t *testing.T) {
	request := &Request{TargetIDs: []string{"1", "2", "3", "4", "5"}}
	testCases := []struct {
		name   string
		from   int
		size   int
		expect []string
	}{
		{name: "head", from: 0, size: 2, expect: []string{"1", "2"}},
		{name: "middle", from: 2, size: 2, expect: []string{"3", "4"}},
		{name: "clamped tail", from: 3, size: 5, expect: []string{"4", "5"}},
		{name: "past end", from: 5, size: 1},
		{name: "negative", from: -1, size: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, request.Batch(tc.from, tc.size))
		})
	}
}

func TestWindows(t *testing.T) {
	assert.Equal(t, []Window{{0, 2}, {2, 2}, {4, 1}}, Windows(5, 2))
	assert.Equal(t, []Window{{0, 3}}, Windows(3, 0))
	assert.Nil(t, Windows(0, 2))

	_, err := Window{Offset: -1}.Clamp(3)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
