package cache

import (
	"sync"

	"github.com/virtualrange/weaponsim/internal/model"
)

// WeaponCache caches weapons when they are registered to avoid subsequent db reads.
// Latency in these calls is critical to quickly process incoming data.
type WeaponCache struct {
	m       sync.Mutex
	Weapons map[uint16]model.Weapon
}

func NewWeaponCache() *WeaponCache {
	return &WeaponCache{
		m:       sync.Mutex{},
		Weapons: make(map[uint16]model.Weapon),
	}
}

func (c *WeaponCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Weapons = make(map[uint16]model.Weapon)
}

func (c *WeaponCache) Get(id uint16) (model.Weapon, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if w, ok := c.Weapons[id]; ok {
		return w, true
	}
	return model.Weapon{}, false
}

func (c *WeaponCache) Add(w model.Weapon) {
	c.m.Lock()
	defer c.m.Unlock()
	c.Weapons[w.ObjectID] = w
}

func (c *WeaponCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Weapons)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
