package server

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Blacklist reports users whose tokens must be refused
type Blacklist interface {
	IsBlacklisted(ctx context.Context, userID string) (bool, error)
}

// redisBlacklist checks "<prefix><userID>" keys in Redis
type redisBlacklist struct {
	client *redis.Client
	prefix string
}

// NewRedisBlacklist returns a Blacklist backed by key existence in Redis
func NewRedisBlacklist(client *redis.Client, prefix string) Blacklist {
	return &redisBlacklist{client: client, prefix: prefix}
}

func (b *redisBlacklist) IsBlacklisted(ctx context.Context, userID string) (bool, error) {
	n, err := b.client.Exists(ctx, b.prefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
