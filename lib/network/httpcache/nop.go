package httpcache

import (
	"time"
)

// NopCacheAdapter caches nothing; used when caching is disabled.
type NopCacheAdapter struct{}

func NewNopCacheAdapter() *NopCacheAdapter {
	return &NopCacheAdapter{}
}

func (a *NopCacheAdapter) Get(key string) (*Response, bool) {
	return nil, false
}

func (a *NopCacheAdapter) Set(key string, resp *Response, expir time.Time) {
}

func (a *NopCacheAdapter) Remove(key string) {
}
