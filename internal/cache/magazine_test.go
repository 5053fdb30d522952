package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagazineCache_NewMagazineCache(t *testing.T) {
	cache := NewMagazineCache()

	require.NotNil(t, cache)
	assert.NotNil(t, cache.magazines)
}

func TestMagazineCache_SetAndGet(t *testing.T) {
	cache := NewMagazineCache()

	cache.Set("mag_9mm_17rnd", 17)

	capacity, ok := cache.Get("mag_9mm_17rnd")
	require.True(t, ok, "expected to find mag_9mm_17rnd")
	assert.Equal(t, uint16(17), capacity)
}

func TestMagazineCache_Get_NotFound(t *testing.T) {
	cache := NewMagazineCache()

	_, ok := cache.Get("nonexistent")
	assert.False(t, ok, "expected not to find nonexistent magazine class")
}

func TestMagazineCache_Delete(t *testing.T) {
	cache := NewMagazineCache()

	cache.Set("mag_9mm_17rnd", 17)
	cache.Set("mag_556_30rnd", 30)

	cache.Delete("mag_9mm_17rnd")

	_, ok := cache.Get("mag_9mm_17rnd")
	assert.False(t, ok, "expected not to find mag_9mm_17rnd after delete")

	_, ok = cache.Get("mag_556_30rnd")
	assert.True(t, ok, "expected mag_556_30rnd to still exist")
}

func TestMagazineCache_Reset(t *testing.T) {
	cache := NewMagazineCache()

	cache.Set("mag_9mm_17rnd", 17)
	cache.Set("mag_556_30rnd", 30)

	cache.Reset()

	_, ok := cache.Get("mag_9mm_17rnd")
	assert.False(t, ok, "expected mag_9mm_17rnd to be cleared after reset")

	// Verify we can still add classes after reset
	cache.Set("mag_45_10rnd", 10)
	_, ok = cache.Get("mag_45_10rnd")
	assert.True(t, ok, "expected to find mag_45_10rnd after reset")
}

func TestMagazineCache_OverwriteExisting(t *testing.T) {
	cache := NewMagazineCache()

	cache.Set("mag_9mm_17rnd", 17)
	cache.Set("mag_9mm_17rnd", 19)

	capacity, ok := cache.Get("mag_9mm_17rnd")
	require.True(t, ok, "expected to find mag_9mm_17rnd")
	assert.Equal(t, uint16(19), capacity)
}

func TestMagazineCache_Concurrent(t *testing.T) {
	cache := NewMagazineCache()
	var wg sync.WaitGroup

	// Mixed concurrent operations
	for i := 0; i < 100; i++ {
		wg.Add(3)

		go func(id int) {
			defer wg.Done()
			cache.Set("mag_9mm_17rnd", uint16(id))
		}(i)

		go func() {
			defer wg.Done()
			cache.Get("mag_9mm_17rnd")
		}()

		go func() {
			defer wg.Done()
			cache.Delete("mag_9mm_17rnd")
		}()
	}

	wg.Wait()
}
