package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// This is useful when several servers or users share one Redis instance and
// need separate cache namespaces.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "floorplan:")
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

// RunKey generates a prefixed run key.
func (k *ScopedKeyer) RunKey(modulesHash string, opts RunKeyOpts) string {
	return k.prefix + k.inner.RunKey(modulesHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(runHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(runHash, opts)
}
