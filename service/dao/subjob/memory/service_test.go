package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fanout/model/types"
	"github.com/viant/fanout/runtime/execution"
	"github.com/viant/fanout/service/dao"
)

func TestService_List(t *testing.T) {
	ctx := context.Background()
	srv := New()
	action := types.ActionKind{Service: "host", Method: "reboot"}
	for _, subJob := range []*execution.SubJob{
		execution.NewSubJob("c", "j1", 3, action, nil),
		execution.NewSubJob("a", "j1", 1, action, &types.Resource{ID: "1"}),
		execution.NewSubJob("x", "j2", 1, action, &types.Resource{ID: "1"}),
		execution.NewSubJob("b", "j1", 2, action, &types.Resource{ID: "2"}),
	} {
		require.NoError(t, srv.Save(ctx, subJob))
	}

	listed, err := srv.List(ctx, dao.NewParameter("JobID", "j1"))
	require.NoError(t, err)
	var ids []string
	for _, item := range listed {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	listed, err = srv.List(ctx, dao.NewParameter("TargetID", "1"))
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	loaded, err := srv.Load(ctx, "c")
	require.NoError(t, err)
	assert.True(t, loaded.Missing)
}
