package registry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratediff/pkg/cache"
	"github.com/matzehuels/cratediff/pkg/deps"
	"github.com/matzehuels/cratediff/pkg/observability"
)

// Memo memoizes a registry provider.
//
// Every (kind, crate, version) question reaches the inner provider at most
// once per Memo, failures included. Successful version, hash and repository
// answers are also written to a persistent cache; source paths are not,
// since they point into the local filesystem.
type Memo struct {
	inner  deps.RegistryProvider
	store  cache.Cache
	keyer  cache.Keyer
	logger *log.Logger

	mu      sync.Mutex
	entries map[string]memoEntry
}

type memoEntry struct {
	value any
	err   error
}

var _ deps.RegistryProvider = (*Memo)(nil)

// NewMemo wraps inner. A nil store keeps memoization in memory only.
func NewMemo(inner deps.RegistryProvider, store cache.Cache, keyer cache.Keyer, logger *log.Logger) *Memo {
	if store == nil {
		store = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Memo{
		inner:   inner,
		store:   store,
		keyer:   keyer,
		logger:  logger,
		entries: make(map[string]memoEntry),
	}
}

// LatestOrPinned implements deps.RegistryProvider.
func (m *Memo) LatestOrPinned(ctx context.Context, name string, v *semver.Version) (deps.CrateInfo, error) {
	return memoize(ctx, m, KindVersion, name, v, true, func() (deps.CrateInfo, error) {
		return m.inner.LatestOrPinned(ctx, name, v)
	})
}

// CommitHash implements deps.RegistryProvider.
func (m *Memo) CommitHash(ctx context.Context, name string, v *semver.Version) (string, error) {
	return memoize(ctx, m, KindHash, name, v, true, func() (string, error) {
		return m.inner.CommitHash(ctx, name, v)
	})
}

// Repository implements deps.RegistryProvider.
func (m *Memo) Repository(ctx context.Context, name string, v *semver.Version) (string, error) {
	return memoize(ctx, m, KindRepository, name, v, true, func() (string, error) {
		return m.inner.Repository(ctx, name, v)
	})
}

// SourcePath implements deps.RegistryProvider.
func (m *Memo) SourcePath(ctx context.Context, name string, v *semver.Version) (string, error) {
	return memoize(ctx, m, KindSource, name, v, false, func() (string, error) {
		return m.inner.SourcePath(ctx, name, v)
	})
}

func versionString(v *semver.Version) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func ttlFor(v *semver.Version) time.Duration {
	if v == nil {
		return cache.TTLLatest
	}
	return cache.TTLPinned
}

func memoize[T any](ctx context.Context, m *Memo, kind, name string, v *semver.Version, persist bool, fetch func() (T, error)) (T, error) {
	key := m.keyer.LookupKey(kind, name, versionString(v))

	m.mu.Lock()
	e, ok := m.entries[key]
	m.mu.Unlock()
	if ok {
		val, _ := e.value.(T)
		return val, e.err
	}

	if persist {
		var val T
		if err := cache.GetJSON(ctx, m.store, key, &val); err == nil {
			observability.Cache().OnCacheHit(ctx, kind)
			m.remember(key, val, nil)
			return val, nil
		}
		observability.Cache().OnCacheMiss(ctx, kind)
	}

	val, err := fetch()
	m.remember(key, val, err)
	if err == nil && persist {
		m.persist(ctx, kind, name, key, val, ttlFor(v))
	}
	return val, err
}

func (m *Memo) persist(ctx context.Context, kind, name, key string, val any, ttl time.Duration) {
	data, err := json.Marshal(val)
	if err == nil {
		err = m.store.Set(ctx, key, data, ttl)
	}
	if err != nil {
		m.logger.Debug("cache write failed", "kind", kind, "crate", name, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

func (m *Memo) remember(key string, value any, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoEntry{value: value, err: err}
}
