package cache

import "sync"

// MagazineCache maps magazine class names to their capacities for the
// current session. The host only sends a capacity on the first load of
// each class; later loads may omit it.
type MagazineCache struct {
	mu        sync.RWMutex
	magazines map[string]uint16
}

// NewMagazineCache creates a new MagazineCache
func NewMagazineCache() *MagazineCache {
	return &MagazineCache{
		magazines: make(map[string]uint16),
	}
}

// Get retrieves a magazine capacity by class name
func (c *MagazineCache) Get(className string) (uint16, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	capacity, ok := c.magazines[className]
	return capacity, ok
}

// Set stores a magazine capacity by class name
func (c *MagazineCache) Set(className string, capacity uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.magazines[className] = capacity
}

// Delete removes a magazine class from the cache
func (c *MagazineCache) Delete(className string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.magazines, className)
}

// Reset clears all magazine classes from the cache
func (c *MagazineCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.magazines = make(map[string]uint16)
}
