package secrets

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedFetcher keeps fetched secrets for a TTL so repeated lookups stay local.
type CachedFetcher struct {
	next  Fetcher
	cache *cache.Cache
}

func NewCachedFetcher(next Fetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (f *CachedFetcher) GetSecret(ctx context.Context, name string) (map[string]string, error) {
	if x, found := f.cache.Get(name); found {
		return copyMap(x.(map[string]string)), nil
	}

	values, err := f.next.GetSecret(ctx, name)
	if err != nil {
		return nil, err
	}

	f.cache.Set(name, copyMap(values), cache.DefaultExpiration)
	return values, nil
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
