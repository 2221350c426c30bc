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

// RevocationList invalidates local session tokens before they expire
type RevocationList interface {
	// RevokeToken revokes a single token by its JTI; ttl should cover the token's remaining lifetime
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeUser rejects every token of uid issued at or before now
	RevokeUser(ctx context.Context, uid string, ttl time.Duration) error
	IsUserRevoked(ctx context.Context, uid string, issuedAt time.Time) (bool, error)
}

// RedisRevocationList implements RevocationList using Redis
type RedisRevocationList struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list on an existing Redis client
func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{
		client:    client,
		keyPrefix: "session:revoked:",
	}
}

func (r *RedisRevocationList) jtiKey(jti string) string {
	return r.keyPrefix + "jti:" + jti
}

func (r *RedisRevocationList) userKey(uid string) string {
	return r.keyPrefix + "user:" + uid
}

// RevokeToken stores the JTI until ttl elapses
func (r *RedisRevocationList) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session token: %w", err)
	}
	return nil
}

// IsTokenRevoked checks the JTI entry
func (r *RedisRevocationList) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session revocation: %w", err)
	}
	return n > 0, nil
}

// RevokeUser stores the revocation time of uid
func (r *RedisRevocationList) RevokeUser(ctx context.Context, uid string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.userKey(uid), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user sessions: %w", err)
	}
	return nil
}

// IsUserRevoked reports whether a token issued at issuedAt predates the user's revocation
func (r *RedisRevocationList) IsUserRevoked(ctx context.Context, uid string, issuedAt time.Time) (bool, error) {
	raw, err := r.client.Get(ctx, r.userKey(uid)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user revocation: %w", err)
	}
	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}
	return issuedAt.Unix() <= revokedAt, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList keeps revocations in process memory.
// Revocations are lost on restart and not shared between instances.
type InMemoryRevocationList struct {
	mu        sync.Mutex
	tokens    map[string]time.Time // jti -> entry expiration
	revokedAt map[string]time.Time // uid -> revocation time
	now       func() time.Time
}

// NewInMemoryRevocationList creates an empty in-memory revocation list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{
		tokens:    make(map[string]time.Time),
		revokedAt: make(map[string]time.Time),
		now:       time.Now,
	}
}

func (r *InMemoryRevocationList) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[jti] = r.now().Add(ttl)
	return nil
}

func (r *InMemoryRevocationList) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiration, ok := r.tokens[jti]
	if !ok {
		return false, nil
	}
	if r.now().After(expiration) {
		delete(r.tokens, jti)
		return false, nil
	}
	return true, nil
}

func (r *InMemoryRevocationList) RevokeUser(_ context.Context, uid string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokedAt[uid] = r.now()
	return nil
}

func (r *InMemoryRevocationList) IsUserRevoked(_ context.Context, uid string, issuedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	revokedAt, ok := r.revokedAt[uid]
	if !ok {
		return false, nil
	}
	// Token timestamps have second precision
	return issuedAt.Unix() <= revokedAt.Unix(), nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
