package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenCache stores resolved credentials keyed by token for a bounded TTL.
// The cache is an optimization owned by the AuthorityClient: a missing or
// failing cache changes latency only, never authorization outcomes.
type TokenCache interface {
	Get(ctx context.Context, token string) (*Credential, bool)
	Set(ctx context.Context, token string, cred *Credential, ttl time.Duration)
}

// RedisTokenCache caches authority answers in Redis. Tokens are hashed with
// SHA-256 before use as keys so raw bearer tokens never land in the store.
type RedisTokenCache struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenCache(addr, password, prefix string) (*RedisTokenCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisTokenCache{client: client, prefix: prefix}, nil
}

func (c *RedisTokenCache) Get(ctx context.Context, token string) (*Credential, bool) {
	cached, err := c.client.Get(ctx, c.key(token)).Result()
	if err != nil {
		return nil, false
	}

	var cred Credential
	if err := json.Unmarshal([]byte(cached), &cred); err != nil {
		return nil, false
	}

	return &cred, true
}

func (c *RedisTokenCache) Set(ctx context.Context, token string, cred *Credential, ttl time.Duration) {
	data, err := json.Marshal(cred)
	if err != nil {
		return
	}

	// Best effort. A failed write falls back to the authority on the
	// next request.
	c.client.Set(ctx, c.key(token), data, ttl)
}

func (c *RedisTokenCache) Close() error {
	return c.client.Close()
}

func (c *RedisTokenCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}
