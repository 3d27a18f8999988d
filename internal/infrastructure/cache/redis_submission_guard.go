package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vendorhub/console/internal/domain/shared"
	"github.com/vendorhub/console/internal/infrastructure/config"
)

const defaultGuardKeyPrefix = "console:refund:submit:"

// releaseScript deletes the lease only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSubmissionGuard implements shared.LeaseStore on Redis so that every
// console instance sees the same in-flight submissions. Each acquire stores
// a fresh token, and Release only removes a lease carrying that token.
type RedisSubmissionGuard struct {
	client    redis.UniversalClient
	keyPrefix string

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisSubmissionGuard connects to Redis and verifies the connection
func NewRedisSubmissionGuard(ctx context.Context, cfg config.RedisConfig) (*RedisSubmissionGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSubmissionGuardWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisSubmissionGuardWithClient wraps an existing client
func NewRedisSubmissionGuardWithClient(client redis.UniversalClient, keyPrefix string) *RedisSubmissionGuard {
	if keyPrefix == "" {
		keyPrefix = defaultGuardKeyPrefix
	}
	return &RedisSubmissionGuard{
		client:    client,
		keyPrefix: keyPrefix,
		tokens:    make(map[string]string),
	}
}

// TryAcquire uses SET NX with an expiry so the lease is taken atomically
func (g *RedisSubmissionGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := ulid.Make().String()
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire submission lease: %w", err)
	}
	if ok {
		g.mu.Lock()
		g.tokens[key] = token
		g.mu.Unlock()
	}
	return ok, nil
}

// Release deletes the lease if it still belongs to this guard. A lease that
// expired and was taken by another instance is left alone.
func (g *RedisSubmissionGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	token, held := g.tokens[key]
	g.mu.Unlock()
	if !held {
		return nil
	}

	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release submission lease: %w", err)
	}

	g.mu.Lock()
	if g.tokens[key] == token {
		delete(g.tokens, key)
	}
	g.mu.Unlock()
	return nil
}

// Ping reports whether Redis is reachable
func (g *RedisSubmissionGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}

// Client exposes the connection for other Redis-backed readers
func (g *RedisSubmissionGuard) Client() redis.UniversalClient {
	return g.client
}

// Close closes the Redis client
func (g *RedisSubmissionGuard) Close() error {
	return g.client.Close()
}

var _ shared.LeaseStore = (*RedisSubmissionGuard)(nil)
