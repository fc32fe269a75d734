package repository

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevocationRepository stores revoked token keys with a per-entry TTL.
type RevocationRepository interface {
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}

type memoryRevocationRepository struct {
	cache *gocache.Cache
}

// NewMemoryRevocationRepository keeps revocations in process. Expired entries
// are swept every cleanupInterval.
func NewMemoryRevocationRepository(cleanupInterval time.Duration) RevocationRepository {
	return &memoryRevocationRepository{cache: gocache.New(gocache.NoExpiration, cleanupInterval)}
}

func (r *memoryRevocationRepository) Revoke(_ context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	r.cache.Set(key, struct{}{}, ttl)
	return nil
}

func (r *memoryRevocationRepository) IsRevoked(_ context.Context, key string) (bool, error) {
	_, found := r.cache.Get(key)
	return found, nil
}

type redisRevocationRepository struct {
	client *redis.Client
}

// NewRedisRevocationRepository shares revocations across instances through Redis.
func NewRedisRevocationRepository(client *redis.Client) RevocationRepository {
	return &redisRevocationRepository{client: client}
}

func (r *redisRevocationRepository) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, revokedKeyPrefix+key, 1, ttl).Err()
}

func (r *redisRevocationRepository) IsRevoked(ctx context.Context, key string) (bool, error) {
	err := r.client.Get(ctx, revokedKeyPrefix+key).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
