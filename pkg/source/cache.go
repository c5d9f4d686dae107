package source

import "sync"

// Cache keeps fetched objects by location so a location named twice is
// only downloaded once.
type Cache struct {
	objects map[string]*Object
	mu      sync.RWMutex
}

// NewCache creates a new object cache.
func NewCache() *Cache {
	return &Cache{
		objects: make(map[string]*Object),
	}
}

// Get retrieves a cached object for the given location.
// Returns nil if not found.
func (c *Cache) Get(location string) *Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.objects[location]
}

// Set stores an object for the given location.
func (c *Cache) Set(location string, obj *Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects[location] = obj
}
