package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/starsheet/internal/importer/hephaistos"
)

// KeyPrefix namespaces cached documents.
const KeyPrefix = "starsheet:doc:"

var _ hephaistos.DocumentCache = (*DocumentCache)(nil)

// DocumentCache stores raw character documents keyed by character id.
type DocumentCache struct {
	client Client
	ttl    time.Duration
}

// NewDocumentCache creates a cache whose entries expire after ttl. A ttl of zero
// keeps entries until evicted.
//
// Precondition: client must be non-nil; ttl must be >= 0.
func NewDocumentCache(client Client, ttl time.Duration) *DocumentCache {
	return &DocumentCache{client: client, ttl: ttl}
}

// Key returns the Redis key for a character id.
func Key(id string) string {
	return KeyPrefix + id
}

// Get returns the cached document for id.
//
// Postcondition: a miss returns (nil, false, nil).
func (c *DocumentCache) Get(ctx context.Context, id string) ([]byte, bool, error) {
	doc, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached document %s: %w", id, err)
	}
	return doc, true, nil
}

// Put stores doc for id, replacing any earlier entry and resetting its expiry.
func (c *DocumentCache) Put(ctx context.Context, id string, doc []byte) error {
	if err := c.client.Set(ctx, Key(id), doc, c.ttl).Err(); err != nil {
		return fmt.Errorf("caching document %s: %w", id, err)
	}
	return nil
}

// Invalidate removes the cached document for id.
func (c *DocumentCache) Invalidate(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("invalidating cached document %s: %w", id, err)
	}
	return nil
}
