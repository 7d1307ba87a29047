package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bursar/internal/institution/models"
	id "bursar/pkg/domain"
	"bursar/pkg/platform/sentinel"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute)
	inst := &models.Institution{ID: id.NewInstitutionID(), Name: "Riverside", Balance: 10}

	_, err := c.Get(ctx, inst.ID)
	require.ErrorIs(t, err, sentinel.ErrNotFound)

	require.NoError(t, c.Set(ctx, inst))
	inst.Balance = 99

	got, err := c.Get(ctx, inst.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.Balance, "cache holds a snapshot, not the caller's pointer")

	got.Balance = 50
	again, err := c.Get(ctx, inst.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 10, again.Balance)

	require.NoError(t, c.Invalidate(ctx, inst.ID))
	_, err = c.Get(ctx, inst.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestLocalExpires(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(10 * time.Millisecond)
	inst := &models.Institution{ID: id.NewInstitutionID()}
	require.NoError(t, c.Set(ctx, inst))

	require.Eventually(t, func() bool {
		_, err := c.Get(ctx, inst.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestLocalAddKeepsExistingValue(t *testing.T) {
	ctx := context.Background()
	c := NewLocal(time.Minute)
	committed := &models.Institution{ID: id.NewInstitutionID(), Balance: 100}
	require.NoError(t, c.Set(ctx, committed))

	stale := *committed
	stale.Balance = 0
	require.NoError(t, c.Add(ctx, &stale))

	got, err := c.Get(ctx, committed.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 100, got.Balance)

	require.NoError(t, c.Invalidate(ctx, committed.ID))
	require.NoError(t, c.Add(ctx, &stale))
	got, err = c.Get(ctx, committed.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, got.Balance, "add fills an empty slot")
}
