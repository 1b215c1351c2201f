package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*Redis)(nil)

// Redis is a Store backed by a Redis server, for deployments where the
// client runs server side (kiosks, gateway services) and sessions must
// be shared between processes.
type Redis struct {
	client *redis.Client
}

// NewRedis returns a Store connected to the Redis server at addr.
func NewRedis(addr string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", errors.Wrap(err, "[Redis.Get]")
	}
	return v, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return errors.Wrap(r.client.Set(ctx, key, value, 0).Err(), "[Redis.Set]")
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return errors.Wrap(r.client.Del(ctx, key).Err(), "[Redis.Remove]")
}

func (r *Redis) RemoveMany(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return errors.Wrap(r.client.Del(ctx, keys...).Err(), "[Redis.RemoveMany]")
}
