package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const redisKeyPrefix = "academy:list:"

// RedisListCache keeps one hash per resource generation. The generation counter
// lives at academy:list:<resource>:version and never expires; Invalidate INCRs it
// and drops the hash of the previous generation.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListCache(client *redis.Client, ttl time.Duration) *RedisListCache {
	return &RedisListCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisListCache) Get(ctx context.Context, resource, variant string) ([]byte, Version, bool) {
	n, err := c.client.Get(ctx, versionKey(resource)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Warnf("list cache, get version [%s]: %s", resource, err)
		return nil, Version{}, false
	}
	version := Version{n: n, valid: true}

	data, err := c.client.HGet(ctx, hashKey(resource, n), variant).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, false
	}
	if err != nil {
		log.Warnf("list cache, get [%s/%s]: %s", resource, variant, err)
		return nil, version, false
	}
	return data, version, true
}

func (c *RedisListCache) Set(ctx context.Context, resource, variant string, version Version, data []byte) {
	if !version.valid {
		return
	}
	key := hashKey(resource, version.n)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, variant, data)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		log.Warnf("list cache, set [%s/%s]: %s", resource, variant, err)
	}
}

func (c *RedisListCache) Invalidate(ctx context.Context, resource string) {
	n, err := c.client.Incr(ctx, versionKey(resource)).Result()
	if err != nil {
		log.Errorf("list cache, invalidate [%s]: %s", resource, err)
		return
	}
	// readers already moved to n; the old hash would expire on its own anyway
	if err := c.client.Del(ctx, hashKey(resource, n-1)).Err(); err != nil {
		log.Warnf("list cache, drop generation %d of [%s]: %s", n-1, resource, err)
	}
}

func versionKey(resource string) string {
	return redisKeyPrefix + resource + ":version"
}

func hashKey(resource string, generation int64) string {
	return redisKeyPrefix + resource + ":" + strconv.FormatInt(generation, 10)
}
