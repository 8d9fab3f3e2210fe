package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ByteCache is a small in-memory TTL cache for marshaled values,
// backed by go-cache
type ByteCache struct {
	cache *gocache.Cache
}

// NewByteCache creates a new ByteCache instance
// defaultExpiration: default expiration time for items
// cleanupInterval: interval for cleaning up expired items
func NewByteCache(defaultExpiration, cleanupInterval time.Duration) *ByteCache {
	return &ByteCache{
		cache: gocache.New(defaultExpiration, cleanupInterval),
	}
}

// Get retrieves the value for key, reporting whether a live entry was found
func (bc *ByteCache) Get(key string) ([]byte, bool) {
	value, found := bc.cache.Get(key)
	if !found {
		return nil, false
	}

	data, ok := value.([]byte)
	if !ok {
		// Stored value is not []byte, treat as missing
		return nil, false
	}
	return data, true
}

// Set stores a value with the specified timeout
// If timeout is 0, uses the cache's default expiration
func (bc *ByteCache) Set(key string, data []byte, timeout time.Duration) {
	bc.cache.Set(key, data, timeout)
}

// Delete removes an item from cache
func (bc *ByteCache) Delete(key string) {
	bc.cache.Delete(key)
}

// Clear removes all items from cache
func (bc *ByteCache) Clear() {
	bc.cache.Flush()
}

// ItemCount returns the number of items in cache
func (bc *ByteCache) ItemCount() int {
	return bc.cache.ItemCount()
}
