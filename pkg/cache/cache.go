// Package cache stores registry responses between CLI runs.
//
// Three backends implement [Cache]: [FileCache] (the default, under the user
// cache directory), [RedisCache] (shared across machines, for CI runners) and
// [NullCache] (caching disabled). Keys are produced by a [Keyer] so callers
// never build key strings by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss with hit=false and a nil error. Errors are reserved for
// backend failures; callers treat them as a miss and keep going.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer generates cache keys.
type Keyer interface {
	// PackumentKey identifies a packument fetched from a registry. The
	// registry URL is part of the key: the same name may resolve to
	// different documents on different registries.
	PackumentKey(registry, name string) string
}

// DefaultKeyer hashes key components so arbitrary registry URLs and package
// names map to fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PackumentKey implements Keyer.
func (DefaultKeyer) PackumentKey(registry, name string) string {
	return hashKey("packument", registry, name)
}

// DefaultTTL is how long a packument stays fresh when the configuration does
// not say otherwise.
const DefaultTTL = 5 * time.Minute
