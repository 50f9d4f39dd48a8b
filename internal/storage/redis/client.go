// Package redis caches raw character documents in Redis so repeated imports
// do not hit the character service.
package redis

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// Client is the subset of go-redis used by the cache, so tests can supply miniredis
// or a cluster client interchangeably.
type Client interface {
	redis.UniversalClient
}

// Options configures the underlying connection pool.
type Options struct {
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
}

// NewClient creates a client for a single Redis instance. Connections are opened lazily.
func NewClient(addr string, opts *Options) (Client, error) {
	if addr == "" {
		return nil, errors.New("redis: address is required")
	}
	if opts == nil {
		opts = &Options{}
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		MaxRetries:   opts.MaxRetries,
	}), nil
}
