package cache

import (
	"github.com/subledger/subledger/internal/config"
	"github.com/subledger/subledger/internal/logger"
)

// CacheType represents the type of cache to use.
type CacheType string

const (
	// CacheTypeInMemory represents an in-memory cache
	CacheTypeInMemory CacheType = "inmemory"

	// CacheTypeRedis represents a Redis-backed cache
	CacheTypeRedis CacheType = "redis"
)

// Initialize initializes the cache system based on the configured type.
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing cache system", "type", cfg.Cache.Type)

	var cache Cache

	switch CacheType(cfg.Cache.Type) {
	case CacheTypeRedis:
		InitializeRedisCache(cfg, log)
		cache = GetRedisCache()
	case CacheTypeInMemory:
		fallthrough
	default:
		InitializeInMemoryCache()
		cache = GetInMemoryCache()
	}

	log.Infow("cache system initialized", "type", cfg.Cache.Type)
	return cache
}
