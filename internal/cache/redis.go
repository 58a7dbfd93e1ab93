package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "coffee-trucks:view:"
	redisGenPrefix = "coffee-trucks:gen:"
)

// setIfCurrent writes the view only while the generation key still holds the
// generation the reader started from.
var setIfCurrent = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisViews keeps rendered views in Redis so that every instance shares them.
type RedisViews struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisViews creates a RedisViews whose entries expire after ttl.
func NewRedisViews(rdb *redis.Client, ttl time.Duration) *RedisViews {
	return &RedisViews{rdb: rdb, ttl: ttl}
}

func redisKey(path string) string    { return redisKeyPrefix + path }
func redisGenKey(path string) string { return redisGenPrefix + path }

// Get returns the cached body for path.
func (r *RedisViews) Get(ctx context.Context, path string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, redisKey(path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read view %s: %w", path, err)
	}
	return val, true, nil
}

// Generation returns how many times path has been revalidated.
func (r *RedisViews) Generation(ctx context.Context, path string) (uint64, error) {
	gen, err := r.rdb.Get(ctx, redisGenKey(path)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation of %s: %w", path, err)
	}
	return gen, nil
}

// SetIfCurrent stores body for path if path is still at generation gen.
func (r *RedisViews) SetIfCurrent(ctx context.Context, path string, gen uint64, body []byte) (bool, error) {
	stored, err := setIfCurrent.Run(ctx, r.rdb,
		[]string{redisGenKey(path), redisKey(path)},
		strconv.FormatUint(gen, 10), body, r.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to store view %s: %w", path, err)
	}
	return stored == 1, nil
}

// Revalidate deletes the given paths and advances their generations in one
// transaction.
func (r *RedisViews) Revalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range paths {
			pipe.Incr(ctx, redisGenKey(p))
			pipe.Del(ctx, redisKey(p))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to revalidate views %v: %w", paths, err)
	}
	return nil
}
