// Package cache provides a Redis-backed JSON cache for list queries. When Redis
// is not configured or cannot be reached every call becomes a miss and writes are
// dropped, so callers never depend on it for correctness.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a cached page may be served after a missed invalidation.
const DefaultTTL = 60 * time.Second

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	// Prefix namespaces every key, e.g. "talentflow".
	Prefix string
}

// Redis is a JSON cache. The zero value and a nil *Redis are valid and bypass the cache.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	prefix string

	warnedUnavailable atomic.Bool
}

// NewRedis connects to Redis. An empty Addr or a failed ping yields a bypassing cache.
func NewRedis(ctx context.Context, opts Options) *Redis {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if strings.TrimSpace(opts.Addr) == "" {
		return &Redis{ttl: ttl, prefix: prefix}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("[cache] Redis unavailable, bypassing cache: %v", err)
		_ = client.Close()
		return &Redis{ttl: ttl, prefix: prefix}
	}

	log.Printf("[cache] connected to Redis at %s", opts.Addr)
	return &Redis{client: client, ttl: ttl, prefix: prefix}
}

// Available reports whether a Redis connection is in use.
func (r *Redis) Available() bool {
	return !r.isUnavailable()
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		log.Printf("[cache] Redis error, continuing without cache: %v", err)
	}
}

// Key returns the namespaced key for a collection and a normalized query value.
// The query is hashed so arbitrary search text never reaches the key space.
func (r *Redis) Key(collection string, query any) string {
	b, _ := json.Marshal(query)
	sum := sha256.Sum256(b)
	key := collection + ":list:" + hex.EncodeToString(sum[:])
	if r != nil && r.prefix != "" {
		return r.prefix + ":" + key
	}
	return key
}

// GetJSON decodes the cached value into out. It reports false on a miss.
func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value under key with the configured TTL.
func (r *Redis) SetJSON(ctx context.Context, key string, value any) error {
	if r.isUnavailable() {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, r.ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

// Invalidate drops every cached list of collection.
func (r *Redis) Invalidate(ctx context.Context, collection string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern := collection + ":list:*"
	if r.prefix != "" {
		pattern = r.prefix + ":" + pattern
	}
	return r.deleteByPattern(ctx, pattern)
}

// Close releases the connection.
func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}

func (r *Redis) deleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			log.Printf("[cache] Redis delete error key=%s pattern=%s err=%v", k, pattern, err)
		}
	}
	return iter.Err()
}
