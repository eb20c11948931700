package tmdb

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// cache holds decoded responses keyed by request.
type cache struct {
	c *gocache.Cache
}

func newCache(ttl time.Duration) *cache {
	return &cache{c: gocache.New(ttl, 2*ttl)}
}

func (c *cache) get(key string) (any, bool) {
	return c.c.Get(key)
}

func (c *cache) set(key string, v any) {
	c.c.SetDefault(key, v)
}

func (c *cache) len() int {
	return c.c.ItemCount()
}
