package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// revocationKeyPrefix is shared with the identity service, which writes the entries
const revocationKeyPrefix = "token:blacklist:"

// RevocationList reports tokens revoked before they expire
type RevocationList interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// IsUserTokenInvalidated reports whether tokens of userID issued at or
	// before the user's last forced logout must be rejected
	IsUserTokenInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// RedisRevocationList reads revocations written by the identity service
type RedisRevocationList struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list over an existing client
func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client, keyPrefix: revocationKeyPrefix}
}

func (l *RedisRevocationList) jtiKey(jti string) string {
	return l.keyPrefix + "jti:" + jti
}

func (l *RedisRevocationList) userKey(userID string) string {
	return l.keyPrefix + "user:" + userID
}

// IsRevoked checks whether the token id was revoked
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := l.client.Exists(ctx, l.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// IsUserTokenInvalidated compares issuedAt with the stored unix timestamp
func (l *RedisRevocationList) IsUserTokenInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	if userID == "" {
		return false, nil
	}
	raw, err := l.client.Get(ctx, l.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}
	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return issuedAt.Unix() <= invalidatedAt, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList is used when Redis is disabled. Entries only come
// from Revoke and InvalidateUser, so a single node never sees identity
// service revocations.
type InMemoryRevocationList struct {
	mu          sync.Mutex
	revoked     map[string]time.Time
	invalidated map[string]time.Time
	now         func() time.Time
}

// NewInMemoryRevocationList creates an empty list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		revoked:     make(map[string]time.Time),
		invalidated: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Revoke rejects jti until ttl elapses
func (l *InMemoryRevocationList) Revoke(jti string, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.now().Add(ttl)
}

// InvalidateUser rejects every token of userID issued up to now
func (l *InMemoryRevocationList) InvalidateUser(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.invalidated[userID] = l.now()
}

// IsRevoked reports an unexpired revocation of jti
func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if l.now().After(until) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}

// IsUserTokenInvalidated reports tokens issued at or before InvalidateUser
func (l *InMemoryRevocationList) IsUserTokenInvalidated(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	at, ok := l.invalidated[userID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(at), nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
