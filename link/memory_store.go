package link

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	claritycash "github.com/clarity-cash/claritycash"
	"github.com/clarity-cash/claritycash/domain"
)

const activeGrantKey = "active"

// MemoryTokenStore implements TokenStore on ttlcache so an expired grant
// disappears without bookkeeping. The cache holds a single slot.
type MemoryTokenStore struct {
	cache *ttlcache.Cache[string, *domain.LinkTokenGrant]
}

var _ TokenStore = (*MemoryTokenStore)(nil)

// NewMemoryTokenStore creates an empty store and starts the expiry loop.
func NewMemoryTokenStore() *MemoryTokenStore {
	cache := ttlcache.New(
		ttlcache.WithDisableTouchOnHit[string, *domain.LinkTokenGrant](),
	)
	go cache.Start()

	return &MemoryTokenStore{cache: cache}
}

// Put implements TokenStore. An already expired grant clears the slot.
func (s *MemoryTokenStore) Put(_ context.Context, grant *domain.LinkTokenGrant) error {
	ttl := time.Until(grant.Expiration)
	if ttl <= 0 {
		s.cache.Delete(activeGrantKey)
		return nil
	}
	s.cache.Set(activeGrantKey, grant, ttl)
	return nil
}

// Get implements TokenStore.
func (s *MemoryTokenStore) Get(_ context.Context) (*domain.LinkTokenGrant, error) {
	item := s.cache.Get(activeGrantKey)
	if item == nil {
		return nil, claritycash.ErrLinkTokenNotFound
	}
	return item.Value(), nil
}

// Clear implements TokenStore.
func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.cache.Delete(activeGrantKey)
	return nil
}

// Close stops the expiry loop.
func (s *MemoryTokenStore) Close() error {
	s.cache.Stop()
	return nil
}
