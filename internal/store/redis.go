package store

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "recipe-assistant:"

// Redis stores entries as plain string keys without expiry.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps a connected client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrapf(err, "get %s", key)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return pkgerrors.Wrapf(r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(), "set %s", key)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return pkgerrors.Wrapf(r.client.Del(ctx, redisKeyPrefix+key).Err(), "delete %s", key)
}
