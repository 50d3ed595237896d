// Package cache stores optimisation results and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (the HTTP server)
//   - [NullCache]: never stores anything (--no-cache)
//
// # Keys
//
// A [Keyer] derives keys from content hashes. A run is identified by the hash
// of its module list and every option that influences the search, so the same
// request with the same seed is answered from the cache:
//
//	k := cache.NewDefaultKeyer()
//	key := k.RunKey(cache.Hash(modulesJSON), cache.RunKeyOpts{Seed: 1, Trials: 1000})
//
// Use [NewScopedKeyer] to keep several tenants apart in one backend.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TTLRun      = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); an error means the backend itself
// failed. A ttl of zero never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
