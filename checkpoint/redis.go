package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const redis_prefix = "allspots:import:offset:"

// RedisCheckpointer stores offsets as redis string keys, which lets several machines
// share the progress of chunked imports.
type RedisCheckpointer struct {
	client *redis.Client
}

func NewRedisCheckpointer(ctx context.Context, uri string) (Checkpointer, error) {

	opts, err := redis.ParseURL(uri)

	if err != nil {
		return nil, fmt.Errorf("Failed to parse redis URI, %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()

	if err != nil {
		return nil, fmt.Errorf("Failed to ping redis, %w", err)
	}

	c := &RedisCheckpointer{
		client: client,
	}

	return c, nil
}

func (c *RedisCheckpointer) Load(ctx context.Context, key string) (int, error) {

	v, err := c.client.Get(ctx, redis_prefix+key).Result()

	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("Failed to load checkpoint for %s, %w", key, err)
	}

	offset, err := strconv.Atoi(v)

	if err != nil || offset < 0 {
		return 0, nil
	}

	return offset, nil
}

func (c *RedisCheckpointer) Save(ctx context.Context, key string, offset int) error {
	return c.client.Set(ctx, redis_prefix+key, offset, 0).Err()
}

func (c *RedisCheckpointer) Clear(ctx context.Context, key string) error {
	return c.client.Del(ctx, redis_prefix+key).Err()
}

func (c *RedisCheckpointer) Close() error {
	return c.client.Close()
}
