package sbf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedCloud(t *testing.T, n int) *Cloud {
	t.Helper()
	points := make([][3]float64, n)
	cloud, err := New(points, nil)
	require.NoError(t, err)
	return cloud
}

func TestCloudCacheGet(t *testing.T) {
	cache := NewCloudCache(0)
	loads := 0
	load := func() (*Cloud, error) {
		loads++
		return cachedCloud(t, 10), nil
	}

	first, err := cache.Get("a.sbf", load)
	require.NoError(t, err)
	second, err := cache.Get("a.sbf", load)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loads)

	hits, misses := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)
}

func TestCloudCacheLoadError(t *testing.T) {
	cache := NewCloudCache(0)
	wantErr := errors.New("boom")
	_, err := cache.Get("a.sbf", func() (*Cloud, error) { return nil, wantErr })
	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, cache.Len())
}

func TestCloudCacheEviction(t *testing.T) {
	// Each 10-point cloud estimates to 240+1024 bytes; cap fits two.
	cache := NewCloudCache(3000)

	for _, path := range []string{"a", "b", "c"} {
		ok := cache.Add(path, cachedCloud(t, 10))
		require.True(t, ok)
	}

	// "a" was least recently used and must have been evicted.
	assert.Equal(t, 2, cache.Len())
	loads := 0
	_, err := cache.Get("a", func() (*Cloud, error) {
		loads++
		return cachedCloud(t, 10), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

func TestCloudCacheTooLarge(t *testing.T) {
	cache := NewCloudCache(100)
	ok := cache.Add("huge", cachedCloud(t, 1000))
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())

	// Get still returns the cloud even though it cannot be cached.
	c, err := cache.Get("huge", func() (*Cloud, error) { return cachedCloud(t, 1000), nil })
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, 0, cache.Len())
}

func TestCloudCacheRemove(t *testing.T) {
	cache := NewCloudCache(0)
	cache.Add("a", cachedCloud(t, 10))
	require.Equal(t, 1, cache.Len())
	used := cache.UsedMemory()
	assert.Positive(t, used)

	cache.Remove("a")
	assert.Equal(t, 0, cache.Len())
	assert.Zero(t, cache.UsedMemory())
}
