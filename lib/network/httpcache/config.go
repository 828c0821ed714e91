package httpcache

import (
	"github.com/pkg/errors"
)

const (
	MemoryAdapterName = "mem"
	RedisAdapterName  = "redis"
	NopAdapterName    = ""
)

// Config selects and sizes the response cache; an empty adapter name
// disables caching.
type Config struct {
	Adapter    string
	PoolSize   int
	RedisAddrs map[string]string
}

func NewAdapter(cfg Config) (Adapter, error) {
	switch cfg.Adapter {
	case MemoryAdapterName:
		return NewMemCacheAdapter(cfg.PoolSize), nil
	case RedisAdapterName:
		return NewRedisCacheAdapter(&RedisRingOptions{Addrs: cfg.RedisAddrs}), nil
	case NopAdapterName:
		return NewNopCacheAdapter(), nil
	default:
		return nil, errors.Errorf("unknown http cache adapter: %s", cfg.Adapter)
	}
}
