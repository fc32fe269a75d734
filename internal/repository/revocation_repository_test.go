package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRevocationRepository(time.Minute)

	revoked, err := repo.IsRevoked(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "k1", time.Hour))
	require.NoError(t, repo.Revoke(ctx, "k1", time.Hour))

	revoked, err = repo.IsRevoked(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestMemoryRevocationRepositoryEntryExpires(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRevocationRepository(time.Minute)

	require.NoError(t, repo.Revoke(ctx, "short", 20*time.Millisecond))
	require.Eventually(t, func() bool {
		revoked, err := repo.IsRevoked(ctx, "short")
		return err == nil && !revoked
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryRevocationRepositoryConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRevocationRepository(time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", i)
			assert.NoError(t, repo.Revoke(ctx, key, time.Hour))
			revoked, err := repo.IsRevoked(ctx, key)
			assert.NoError(t, err)
			assert.True(t, revoked)
		}(i)
	}
	wg.Wait()
}

func TestRedisRevocationRepositoryUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewRedisRevocationRepository(client)

	ctx := context.Background()
	assert.Error(t, repo.Revoke(ctx, "k", time.Minute))
	_, err := repo.IsRevoked(ctx, "k")
	assert.Error(t, err)
}
