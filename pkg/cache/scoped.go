package cache

import "github.com/matzehuels/loomviz/pkg/descriptor"

// ScopedKeyer prefixes every key of an inner Keyer, so several viewer
// instances can share one Redis or Mongo backend without seeing each
// other's entries:
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) FeedKey(source string) string {
	return k.prefix + k.inner.FeedKey(source)
}

func (k *ScopedKeyer) ViewKey(api descriptor.API, opts ViewKeyOpts) string {
	return k.prefix + k.inner.ViewKey(api, opts)
}

// ArtifactKey does not re-prefix: viewKey already carries the scope.
func (k *ScopedKeyer) ArtifactKey(viewKey string, opts ArtifactKeyOpts) string {
	return k.inner.ArtifactKey(viewKey, opts)
}
