package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	k := CacheKey("openai", "gpt-5-mini", "system", "prompt")
	assert.True(t, strings.HasPrefix(k, keyPrefix))
	assert.Len(t, strings.TrimPrefix(k, keyPrefix), 64)

	assert.Equal(t, k, CacheKey("openai", "gpt-5-mini", "system", "prompt"))
	assert.NotEqual(t, CacheKey("ab", "c"), CacheKey("a", "bc"))
	assert.NotEqual(t, k, CacheKey("anthropic", "gpt-5-mini", "system", "prompt"))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	require.NoError(t, c.Set("k", []byte("v"), 0))
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Delete("k"))
	_, ok = c.Get("k")
	assert.False(t, ok)

	require.NoError(t, c.Set("a", []byte("1"), 0))
	require.NoError(t, c.Set("b", []byte("2"), 0))
	require.NoError(t, c.Clear())
	assert.Zero(t, c.Len())
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	require.NoError(t, c.Set("k", []byte("v"), time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestDiskCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := CacheKey("x")

	require.NoError(t, c.Set(key, []byte(`{"variations":[]}`), 0))

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, `{"variations":[]}`, string(got))

	name := strings.TrimPrefix(key, keyPrefix)
	_, err := os.Stat(filepath.Join(dir, name[:2], name+".json"))
	assert.NoError(t, err, "entry should be sharded by hash prefix")

	require.NoError(t, c.Delete(key))
	_, ok = c.Get(key)
	assert.False(t, ok)
	assert.NoError(t, c.Delete(key), "deleting a missing key is not an error")
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := CacheKey("expiring")
	require.NoError(t, c.Set(key, []byte("v"), 0))

	now = now.Add(59 * time.Minute)
	_, ok := c.Get(key)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(key)
	assert.False(t, ok)
	_, err := os.Stat(c.path(key))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestDiskCache_CorruptEntryRemoved(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := CacheKey("corrupt")
	path := c.path(key)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, ok := c.Get(key)
	assert.False(t, ok)
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := NewDiskCache(dir, time.Hour)
	require.NoError(t, c.Set(CacheKey("a"), []byte("1"), 0))
	require.NoError(t, c.Clear())

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	key := CacheKey("layered")

	// a previous process left the entry on disk only
	require.NoError(t, NewDiskCache(dir, time.Hour).Set(key, []byte("v"), 0))

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "v", string(got))

	mem := c.memory.(*MemoryCache)
	assert.Equal(t, 1, mem.Len(), "disk hit should be promoted to memory")

	_, ok = c.Get(CacheKey("absent"))
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLayeredCache_SetWritesBothLayers(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Hour)
	key := CacheKey("both")

	require.NoError(t, c.Set(key, []byte("v"), 0))

	_, ok := NewDiskCache(dir, time.Hour).Get(key)
	assert.True(t, ok)
	_, ok = c.memory.Get(key)
	assert.True(t, ok)

	require.NoError(t, c.Delete(key))
	_, ok = c.Get(key)
	assert.False(t, ok)
}
