package engine

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fanout/extension"
	"github.com/viant/fanout/model/bulk"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/policy"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/action/nop"
	"github.com/viant/fanout/service/event"
	"github.com/viant/fanout/service/target/memory"
)

// hostService is a test action with a pluggable body
type hostService struct {
	run func(ctx context.Context, call *types.Call) error
}

func (h *hostService) Name() string { return "host" }

func (h *hostService) Methods() types.Signatures {
	return types.Signatures{{Name: "reboot", Title: "Reboot", Input: reflect.TypeOf(&types.Call{})}}
}

func (h *hostService) Method(name string) (types.Executable, error) {
	return func(ctx context.Context, in, out interface{}) error {
		return h.run(ctx, in.(*types.Call))
	}, nil
}

var reboot = types.ActionKind{Service: "host", Method: "reboot"}

func hosts(ids ...string) []types.Target {
	ret := make([]types.Target, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, &types.Resource{ID: id, Kind: "host", Name: "web-" + id})
	}
	return ret
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newEngine(t *testing.T, action types.Service, stored []types.Target, config Config, opts ...Option) *Service {
	opts = append([]Option{WithConfig(config), WithLogger(quietLogger())}, opts...)
	srv, err := New(
		extension.NewActions(action, nop.New()),
		extension.NewRepositories(memory.New("host", stored...)),
		opts...,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func plan(t *testing.T, srv *Service, action types.ActionKind, targets []types.Target, args ...interface{}) *bulk.Request {
	request, err := srv.Orchestrator().Plan(context.Background(), &bulk.PlanInput{Action: action, Targets: targets, Args: args})
	require.NoError(t, err)
	return request
}

func TestService_MissingTargets(t *testing.T) {
	ctx := context.Background()
	srv := newEngine(t, nop.New(), hosts("1", "3"), Config{BatchSize: 3})
	request := plan(t, srv, types.ActionKind{Service: "nop", Method: "nop"}, hosts("1", "2", "3"))

	job, err := srv.Submit(ctx, request)
	require.NoError(t, err)
	job, err = srv.Wait(ctx, job.ID, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, execution.JobStateCompleted, job.State)
	assert.Equal(t, 3, job.Dispatched)
	assert.Equal(t, 3, job.Progress.Completed)
	assert.Equal(t, 1, job.Progress.Missing)

	subJobs, err := srv.SubJobs(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, subJobs, 3)
	assert.Equal(t, "1", subJobs[0].TargetID)
	assert.Equal(t, "3", subJobs[1].TargetID)
	assert.True(t, subJobs[2].Missing)

	jobCtx, err := srv.JobContext(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nop", srv.Orchestrator().HumanizedName(ctx, jobCtx))
	assert.Equal(t, []string{"nop", "web-1", "..."}, srv.Orchestrator().HumanizedInput(ctx, jobCtx))
}

func TestService_FailureIsolation(t *testing.T) {
	testCases := []struct {
		description string
		rescue      policy.Rescue
		expectState execution.JobState
	}{
		{description: "skip rescue", rescue: policy.RescueSkip, expectState: execution.JobStateCompleted},
		{description: "fail rescue", rescue: policy.RescueFail, expectState: execution.JobStateFailed},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			var executed int32
			action := &hostService{run: func(ctx context.Context, call *types.Call) error {
				atomic.AddInt32(&executed, 1)
				target, err := call.RequireTarget()
				if err != nil {
					return err
				}
				if target.TargetID() == "2" {
					return errors.New("host unreachable")
				}
				return nil
			}}
			all := hosts("1", "2", "3", "4", "5")
			srv := newEngine(t, action, all, Config{BatchSize: 2, Rescue: testCase.rescue})
			request := plan(t, srv, reboot, all, map[string]interface{}{"concurrency_limit": 1})

			job, err := srv.Submit(ctx, request)
			require.NoError(t, err)
			job, err = srv.Wait(ctx, job.ID, 5*time.Second)
			require.NoError(t, err)

			assert.Equal(t, testCase.expectState, job.State)
			assert.EqualValues(t, 5, atomic.LoadInt32(&executed), "sub-jobs after the failure still run")
			assert.Equal(t, 1, job.Progress.Failed)
			assert.Equal(t, 4, job.Progress.Completed)
			require.Len(t, job.Errors, 1)
			assert.Contains(t, job.Errors[0], "host unreachable")

			subJobs, err := srv.SubJobs(ctx, job.ID)
			require.NoError(t, err)
			require.Len(t, subJobs, 5)
			assert.Equal(t, execution.TaskStateFailed, subJobs[1].State)
			assert.Equal(t, "Reboot", subJobs[0].DisplayName)
		})
	}
}

func TestService_ConcurrencyCap(t *testing.T) {
	ctx := context.Background()
	var current, peak int32
	action := &hostService{run: func(ctx context.Context, call *types.Call) error {
		now := atomic.AddInt32(&current, 1)
		for {
			seen := atomic.LoadInt32(&peak)
			if now <= seen || atomic.CompareAndSwapInt32(&peak, seen, now) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		return nil
	}}
	all := hosts("1", "2", "3", "4", "5", "6", "7", "8")
	srv := newEngine(t, action, all, Config{BatchSize: 3, DefaultConcurrency: 8})
	limit := 2
	request, err := srv.Orchestrator().Plan(ctx, &bulk.PlanInput{Action: reboot, Targets: all, ConcurrencyLimit: &limit})
	require.NoError(t, err)

	job, err := srv.Submit(ctx, request)
	require.NoError(t, err)
	job, err = srv.Wait(ctx, job.ID, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, execution.JobStateCompleted, job.State)
	assert.Equal(t, 8, job.Progress.Completed)
	assert.EqualValues(t, 2, atomic.LoadInt32(&peak))
}

func TestService_Cancel(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{}, 4)
	release := make(chan struct{})
	action := &hostService{run: func(ctx context.Context, call *types.Call) error {
		started <- struct{}{}
		<-release
		return nil
	}}
	all := hosts("1", "2", "3", "4")
	srv := newEngine(t, action, all, Config{BatchSize: 1, DefaultConcurrency: 1})
	request := plan(t, srv, reboot, all)

	job, err := srv.Submit(ctx, request)
	require.NoError(t, err)
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first sub-job did not start")
	}
	require.NoError(t, srv.Cancel(ctx, job.ID))
	close(release)

	job, err = srv.Wait(ctx, job.ID, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, execution.JobStateCancelled, job.State)
	assert.Less(t, job.Dispatched, 4)
	subJobs, err := srv.SubJobs(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, subJobs, job.Dispatched)
	for _, subJob := range subJobs {
		assert.Equal(t, execution.TaskStateCompleted, subJob.State)
	}
}

func TestService_PanickingAction(t *testing.T) {
	ctx := context.Background()
	action := &hostService{run: func(ctx context.Context, call *types.Call) error {
		if call.Target != nil && call.Target.TargetID() == "1" {
			panic("nil pointer")
		}
		return nil
	}}
	all := hosts("1", "2")
	srv := newEngine(t, action, all, Config{})
	job, err := srv.Submit(ctx, plan(t, srv, reboot, all))
	require.NoError(t, err)
	job, err = srv.Wait(ctx, job.ID, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, execution.JobStateCompleted, job.State)
	assert.Equal(t, 1, job.Progress.Failed)
	assert.Equal(t, 1, job.Progress.Completed)
}

func TestService_Events(t *testing.T) {
	ctx := context.Background()
	var mux sync.Mutex
	received := map[string]int{}
	listener := func(e *event.Event[*execution.SubJob]) {
		mux.Lock()
		defer mux.Unlock()
		received[e.Type()]++
	}
	all := hosts("1", "2")
	srv := newEngine(t, nop.New(), all[:1], Config{}, WithSubJobListener(listener))
	job, err := srv.Submit(ctx, plan(t, srv, types.ActionKind{Service: "nop", Method: "nop"}, all))
	require.NoError(t, err)
	_, err = srv.Wait(ctx, job.ID, 5*time.Second)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mux.Lock()
		defer mux.Unlock()
		return received[event.TypeCompleted] == 2
	}, 2*time.Second, 10*time.Millisecond)
	mux.Lock()
	defer mux.Unlock()
	assert.Equal(t, 2, received[event.TypeTriggered])
	assert.Equal(t, 2, received[event.TypeStarted])
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	srv := newEngine(t, nop.New(), nil, Config{})
	_, err := srv.Submit(ctx, &bulk.Request{})
	assert.ErrorIs(t, err, bulk.ErrEmptyTargetSet)

	_, err = srv.Wait(ctx, "unknown", time.Millisecond)
	assert.Error(t, err)

	require.NoError(t, srv.Shutdown(ctx))
	_, err = srv.Submit(ctx, &bulk.Request{TargetIDs: []string{"1"}, TargetKind: "host"})
	assert.ErrorIs(t, err, ErrShutdown)
	assert.Error(t, srv.Cancel(ctx, fmt.Sprintf("job-%d", 1)))
}

func TestService_SharedOptions(t *testing.T) {
	testCases := []struct {
		description   string
		options       map[string]interface{}
		expectOptions map[string]interface{}
		expectArgs    int
	}{
		{description: "trailing map arg is not options", expectArgs: 2},
		{
			description:   "shared options appended",
			options:       map[string]interface{}{"force": true},
			expectOptions: map[string]interface{}{"force": true},
			expectArgs:    3,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			ctx := context.Background()
			var mux sync.Mutex
			var calls []*types.Call
			action := &hostService{run: func(ctx context.Context, call *types.Call) error {
				mux.Lock()
				defer mux.Unlock()
				calls = append(calls, call)
				return nil
			}}
			srv := newEngine(t, action, hosts("1"), Config{})
			request, err := srv.Orchestrator().Plan(ctx, &bulk.PlanInput{
				Action:  reboot,
				Targets: hosts("1"),
				Args:    []interface{}{"now", map[string]interface{}{"concurrency_limit": 2}},
				Options: testCase.options,
			})
			require.NoError(t, err)
			job, err := srv.Submit(ctx, request)
			require.NoError(t, err)
			_, err = srv.Wait(ctx, job.ID, 5*time.Second)
			require.NoError(t, err)

			mux.Lock()
			defer mux.Unlock()
			require.Len(t, calls, 1)
			assert.Len(t, calls[0].Args, testCase.expectArgs)
			assert.Equal(t, testCase.expectOptions, calls[0].Options())
		})
	}
}
