package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fanout/service/dao"
	"github.com/viant/fanout/service/dao/criteria"
)

type record struct {
	ID    string
	Group string
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore[string, record](func(r *record) string { return r.ID },
		WithClone[string, record](func(r *record) *record { clone := *r; return &clone }),
		WithFields[string, record](func(r *record) criteria.Field {
			return func(name string) (string, bool) {
				if name == "Group" {
					return r.Group, true
				}
				return "", false
			}
		}))

	assert.ErrorIs(t, store.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, store.Save(ctx, &record{}), dao.ErrInvalidID)

	original := &record{ID: "1", Group: "a"}
	require.NoError(t, store.Save(ctx, original))
	require.NoError(t, store.Save(ctx, &record{ID: "2", Group: "b"}))
	original.Group = "changed"

	loaded, err := store.Load(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Group)

	listed, err := store.List(ctx, dao.NewParameter("Group", "b"))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "2", listed[0].ID)

	require.NoError(t, store.Delete(ctx, "1"))
	_, err = store.Load(ctx, "1")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "1"), dao.ErrNotFound)
}
