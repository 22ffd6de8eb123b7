package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fanout/model/types"
)

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo, err := New("host", t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, &types.Resource{ID: "1", Name: "alpha"}))
	require.NoError(t, repo.Save(ctx, &types.Resource{ID: "3", Name: "gamma"}))
	require.NoError(t, repo.Save(ctx, &types.Resource{ID: "4", Kind: "vm"}))

	targets, err := repo.Lookup(ctx, []string{"1", "2", "3", "4", "1"})
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "1", targets[0].TargetID())
	assert.Equal(t, "host", targets[0].TargetKind())
	assert.Equal(t, "gamma", types.LabelOf(targets[1]))

	require.NoError(t, repo.Delete(ctx, "1"))
	require.NoError(t, repo.Delete(ctx, "2"))
	targets, err = repo.Lookup(ctx, []string{"1", "3"})
	require.NoError(t, err)
	assert.Len(t, targets, 1)
}
