package cache

// ScopedKeyer wraps a Keyer with a prefix so several tools (or several
// configurations of this one) can share a redis instance without colliding.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "openupm:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// PackumentKey generates a prefixed packument key.
func (k *ScopedKeyer) PackumentKey(registry, name string) string {
	return k.prefix + k.inner.PackumentKey(registry, name)
}
