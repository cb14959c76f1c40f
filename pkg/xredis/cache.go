package xredis

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/netgraph/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

// GetOrLoad reads the object of key from redis, or loads it and stores it for ttl. A nil
// client always loads. Redis failures are logged, only errors of load are returned.
func GetOrLoad[T any](
	ctx context.Context, c Client, key string, ttl time.Duration,
	load func(context.Context) (*T, error),
) (*T, error) {
	if c != nil {
		var cached T
		err := c.GetObj(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}

		if !errors.Is(err, redis.Nil) {
			xcontext.Logger(ctx).Warnf("Cannot get %s from redis: %v", key, err)
		}
	}

	result, err := load(ctx)
	if err != nil {
		return nil, err
	}

	Store(ctx, c, key, result, ttl)
	return result, nil
}

// Store caches obj for ttl and drops the key when the write fails.
func Store(ctx context.Context, c Client, key string, obj any, ttl time.Duration) {
	if c == nil {
		return
	}

	if err := c.SetObj(ctx, key, obj, ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot set %s to redis: %v", key, err)
		Invalidate(ctx, c, key)
	}
}

func Invalidate(ctx context.Context, c Client, keys ...string) {
	if c == nil {
		return
	}

	if err := c.Del(ctx, keys...); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot delete %v from redis: %v", keys, err)
	}
}
