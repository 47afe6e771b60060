package cache

// ScopedKeyer prefixes every key of an inner Keyer with "scope:". Lookups
// against different registries, or serve deployments sharing one Redis,
// then never collide.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer scopes inner (DefaultKeyer when nil) to scope. An empty
// scope leaves keys unchanged.
func NewScopedKeyer(inner Keyer, scope string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if scope != "" {
		scope += ":"
	}
	return &ScopedKeyer{inner: inner, prefix: scope}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) LookupKey(kind, name, version string) string {
	return k.prefix + k.inner.LookupKey(kind, name, version)
}
