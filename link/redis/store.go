// Package redis provides a Redis-backed link.TokenStore for deployments
// where the client session state must survive a process restart.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/domain"
	"github.com/clarity-cash/claritycash/link"
)

// TokenStore implements link.TokenStore on a single Redis key with the
// grant expiry as the key TTL.
type TokenStore struct {
	client *redis.Client
	prefix string
}

var _ link.TokenStore = (*TokenStore)(nil)

// NewTokenStore creates a store namespaced by prefix.
func NewTokenStore(client *redis.Client, prefix string) *TokenStore {
	return &TokenStore{client: client, prefix: prefix}
}

func (s *TokenStore) key() string {
	return fmt.Sprintf("%s:link_token", s.prefix)
}

// Put implements link.TokenStore. SET with expiry is atomic, so a later
// Put always wins.
func (s *TokenStore) Put(ctx context.Context, grant *domain.LinkTokenGrant) error {
	ttl := time.Until(grant.Expiration)
	if ttl <= 0 {
		return s.Clear(ctx)
	}

	payload, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal link token grant: %w", err)
	}

	if err := s.client.Set(ctx, s.key(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store link token in redis: %w", err)
	}
	return nil
}

// Get implements link.TokenStore.
func (s *TokenStore) Get(ctx context.Context) (*domain.LinkTokenGrant, error) {
	payload, err := s.client.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		return nil, claritycash.ErrLinkTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read link token from redis: %w", err)
	}

	var grant domain.LinkTokenGrant
	if err := json.Unmarshal(payload, &grant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link token grant: %w", err)
	}
	return &grant, nil
}

// Clear implements link.TokenStore.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("failed to clear link token in redis: %w", err)
	}
	return nil
}
