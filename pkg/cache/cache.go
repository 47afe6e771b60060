// Package cache provides the byte-level caches used by cratediff.
//
// Two kinds of data are cached: raw HTTP responses from crates.io and
// registry lookups (resolved crate versions, commit hashes). Both go through
// the same [Cache] interface so the backend can be swapped without touching
// callers:
//
//   - [NullCache] disables caching
//   - [FileCache] stores entries under the user cache directory (CLI)
//   - [RedisCache] shares entries between `cratediff serve` instances
//
// Keys are produced by a [Keyer] so that namespaces stay consistent and can
// be isolated with [ScopedKeyer].
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiration.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as (nil, false, nil); errors are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default TTLs.
const (
	// TTLHTTP applies to crates.io API responses. Crate metadata changes
	// whenever a new version is published, so keep it short.
	TTLHTTP = time.Hour

	// TTLLatest applies to "latest version" lookups.
	TTLLatest = time.Hour

	// TTLPinned applies to lookups for an exact version (hashes, source
	// paths). Published crate versions are immutable.
	TTLPinned = 30 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for an HTTP response in namespace.
	HTTPKey(namespace, key string) string

	// LookupKey returns the key for a registry lookup of kind for a crate
	// version. An empty version means "latest".
	LookupKey(kind, name, version string) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LookupKey implements Keyer.
func (DefaultKeyer) LookupKey(kind, name, version string) string {
	if version == "" {
		version = "latest"
	}
	data, _ := json.Marshal([]string{name, version})
	return "lookup:" + kind + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
