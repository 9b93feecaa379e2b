package cache

// Keyer derives cache keys.
type Keyer interface {
	// FeedKey returns the key for query results over the feed identified by
	// digest, loaded through view (any JSON-encodable value, nil for none).
	FeedKey(digest, query string, view any) string
}

// DefaultKeyer produces "feed:<query>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FeedKey implements Keyer.
func (DefaultKeyer) FeedKey(digest, query string, view any) string {
	return hashKey("feed:"+query, digest, view)
}

// ScopedKeyer prefixes every key of an inner Keyer, keeping independent
// namespaces apart in one cache directory.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the default keyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FeedKey implements Keyer.
func (k *ScopedKeyer) FeedKey(digest, query string, view any) string {
	return k.prefix + k.inner.FeedKey(digest, query, view)
}
