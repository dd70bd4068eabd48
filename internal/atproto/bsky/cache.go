package bsky

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/snarfed/bluesky-atom/internal/core/feeds"
)

// cacheBackend is the slice of golang-lru both cache variants share.
type cacheBackend interface {
	Get(key string) (feeds.Client, bool)
	Add(key string, value feeds.Client) bool
}

// ClientCache keeps live authenticated clients keyed by credential pair so
// repeated feed requests skip the authentication handshake. Entries are a
// performance optimization only: on any miss the caller's factory rebuilds
// an equivalent client from the stored credential record.
//
// Exactly one eviction policy is active per cache: capacity-bounded LRU, or
// TTL expiry. The TTL variant exists to bound how stale a cached access
// token can get; configure it below the upstream access-token lifetime.
type ClientCache struct {
	backend cacheBackend
}

// NewLRUClientCache creates a client cache bounded by entry count.
func NewLRUClientCache(size int) (*ClientCache, error) {
	backend, err := lru.New[string, feeds.Client](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create client cache: %w", err)
	}
	return &ClientCache{backend: backend}, nil
}

// NewExpiringClientCache creates a client cache whose entries expire ttl
// after insertion.
func NewExpiringClientCache(ttl time.Duration) *ClientCache {
	return &ClientCache{backend: expirable.NewLRU[string, feeds.Client](0, nil, ttl)}
}

// GetOrCreate returns the cached client for key, or invokes build, stores
// the result, and returns it. Concurrent misses on the same key may each
// invoke build; construction is idempotent so the duplicates are harmless
// and last-write-wins.
func (c *ClientCache) GetOrCreate(key string, build func() (feeds.Client, error)) (feeds.Client, error) {
	if cached, ok := c.backend.Get(key); ok {
		return cached, nil
	}
	client, err := build()
	if err != nil {
		return nil, err
	}
	c.backend.Add(key, client)
	return client, nil
}

// Provider combines the factory and cache into the feeds.ClientProvider the
// service layer depends on.
type Provider struct {
	factory *Factory
	cache   *ClientCache
}

// NewProvider creates a client provider. cache may be nil, in which case
// every request builds a fresh client.
func NewProvider(factory *Factory, cache *ClientCache) *Provider {
	return &Provider{factory: factory, cache: cache}
}

var _ feeds.ClientProvider = (*Provider)(nil)

// saverRebinder is satisfied by clients whose refresh callback can be
// re-pointed at the current request's saver.
type saverRebinder interface {
	SetOnRefresh(feeds.SessionSaver)
}

// GetClient returns an authenticated client for the credential pair, reusing
// a cached instance when one is live.
func (p *Provider) GetClient(ctx context.Context, handle, appPassword string, stored *feeds.Session, onRefresh feeds.SessionSaver) (feeds.Client, error) {
	build := func() (feeds.Client, error) {
		return p.factory.NewClient(ctx, handle, appPassword, stored, onRefresh)
	}
	if p.cache == nil {
		return build()
	}
	// The credential pair is a lookup key, not an ownership relation; NUL
	// join keeps distinct pairs from colliding.
	client, err := p.cache.GetOrCreate(handle+"\x00"+appPassword, build)
	if err != nil {
		return nil, err
	}
	// A cached hit still carries the saver of the request that built the
	// client; rotated tokens must be persisted through this request's saver
	// instead.
	if rb, ok := client.(saverRebinder); ok {
		rb.SetOnRefresh(onRefresh)
	}
	return client, nil
}
