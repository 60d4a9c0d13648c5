package secret

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedSource decorates a Source with TTL caching so repeated lookups
// (e.g. on provider reconstruction) do not hammer the backend.
type CachedSource struct {
	inner Source
	cache *cache.Cache
}

// NewCachedSource creates a caching wrapper around src.
func NewCachedSource(src Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: src,
		cache: cache.New(ttl, ttl*2),
	}
}

// Get returns a cached value or delegates to the inner source.
func (s *CachedSource) Get(ctx context.Context, path string) (string, error) {
	if v, found := s.cache.Get(path); found {
		if str, ok := v.(string); ok {
			return str, nil
		}
	}

	val, err := s.inner.Get(ctx, path)
	if err != nil {
		return "", err
	}

	s.cache.Set(path, val, cache.DefaultExpiration)
	return val, nil
}

// Close closes the inner source.
func (s *CachedSource) Close() error {
	return s.inner.Close()
}
