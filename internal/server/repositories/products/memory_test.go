package products

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/shopkeeper/internal/common"
	"github.com/dmitrijs2005/shopkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	last, err := r.LastID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, last)

	for _, p := range []models.Product{
		{ID: 3, Category: "women"},
		{ID: 1, Category: "men"},
		{ID: 2, Category: "women"},
	} {
		_, err := r.Create(ctx, &p)
		require.NoError(t, err)
	}

	_, err = r.Create(ctx, &models.Product{ID: 2})
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})

	women, err := r.ListByCategory(ctx, "women", 1)
	require.NoError(t, err)
	require.Len(t, women, 1)
	assert.Equal(t, 2, women[0].ID)

	last, err = r.LastID(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, last)

	require.NoError(t, r.Delete(ctx, 3))
	require.NoError(t, r.Delete(ctx, 99))
	all, err = r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
