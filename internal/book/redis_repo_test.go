package book

import (
	"context"
	"net"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	pool := dockerPool(t)

	resource, err := pool.Run("redis", "7.0.10-alpine", nil)
	require.NoError(t, err)
	purgeOnCleanup(t, pool, resource)

	addr := net.JoinHostPort("localhost", resource.GetPort("6379/tcp"))
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	err = pool.Retry(func() error {
		return client.Ping(context.Background()).Err()
	})
	require.NoError(t, err)
	return client
}

func TestRedisRepo(t *testing.T) {
	repo := NewRedisRepo(startRedis(t))
	ctx := context.Background()
	cover := "https://covers.example/1.jpg"

	require.NoError(t, repo.Ping(ctx))

	first, err := repo.Create(ctx, NewBook{ISBN: "9781234567897", Title: "T", Author: "A", CoverURL: &cover})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.True(t, first.Status)

	_, err = repo.Create(ctx, NewBook{ISBN: "9781234567897"})
	assert.ErrorIs(t, err, ErrDuplicateISBN)

	second, err := repo.Create(ctx, NewBook{ISBN: "9780000000001"})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	got, err := repo.GetByISBN(ctx, "9781234567897")
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = repo.GetByISBN(ctx, "9789999999999")
	assert.ErrorIs(t, err, ErrNotFound)

	books, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, first.ID, books[0].ID)
	assert.Equal(t, second.ID, books[1].ID)
}
