package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/city-geo-service/internal/domain"
	"github.com/city-geo-service/internal/repository/cache"
)

func newTestStore(t *testing.T, opts cache.AreaJobStoreOptions) (*cache.AreaJobStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewAreaJobStore(client, opts, zap.NewNop()), mr
}

func TestRedisAreaJobStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, cache.AreaJobStoreOptions{})

	id, err := store.Create(ctx, "a", 200)
	require.NoError(t, err)
	assert.True(t, mr.Exists("area_job:"+id))

	job, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatePending, job.State)
	assert.Equal(t, "a", job.OriginGUID)
	assert.Nil(t, job.Result)

	cities := []domain.City{{GUID: "b", Latitude: 0, Longitude: 1, Tags: []string{"x"}, IsActive: true}}
	require.NoError(t, store.Complete(ctx, id, cities))

	job, err = store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateReady, job.State)
	assert.Equal(t, cities, job.Result)
	assert.NotNil(t, job.CompletedAt)
}

func TestRedisAreaJobStore_EmptyResultStaysPopulated(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, cache.AreaJobStoreOptions{})

	id, err := store.Create(ctx, "a", 0)
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, id, nil))

	job, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateReady, job.State)
	assert.NotNil(t, job.Result)
	assert.Empty(t, job.Result)
}

func TestRedisAreaJobStore_RejectsSecondTransition(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, cache.AreaJobStoreOptions{})

	id, err := store.Create(ctx, "a", 1)
	require.NoError(t, err)
	require.NoError(t, store.Fail(ctx, id, "origin vanished"))

	assert.ErrorIs(t, store.Complete(ctx, id, []domain.City{{GUID: "b"}}), domain.ErrJobAlreadyTerminal)
	assert.ErrorIs(t, store.Fail(ctx, id, "again"), domain.ErrJobAlreadyTerminal)

	job, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateFailed, job.State)
	assert.Equal(t, "origin vanished", job.Error)
	assert.Nil(t, job.Result)
}

func TestRedisAreaJobStore_UnknownID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, cache.AreaJobStoreOptions{})

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
	assert.ErrorIs(t, store.Complete(ctx, "missing", nil), domain.ErrJobNotFound)
}

func TestRedisAreaJobStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, cache.AreaJobStoreOptions{
		PendingTTL: 10 * time.Minute,
		Retention:  time.Minute,
	})

	id, err := store.Create(ctx, "a", 1)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, mr.TTL("area_job:"+id))

	require.NoError(t, store.Complete(ctx, id, nil))
	assert.Equal(t, time.Minute, mr.TTL("area_job:"+id))

	mr.FastForward(61 * time.Second)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestRedisAreaJobStore_IDCollision(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t, cache.AreaJobStoreOptions{
		NewID: func() string { return "fixed" },
	})

	_, err := store.Create(ctx, "a", 1)
	require.NoError(t, err)
	_, err = store.Create(ctx, "a", 1)
	assert.Error(t, err)
}

func TestRedisAreaJobStore_UnavailableServer(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t, cache.AreaJobStoreOptions{})
	mr.Close()

	_, err := store.Create(ctx, "a", 1)
	assert.Error(t, err)
	_, err = store.Get(ctx, "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrJobNotFound)
}
