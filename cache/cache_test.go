package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/anoixa/picshare/cache/memory"
	"github.com/anoixa/picshare/cache/redis"
	"github.com/anoixa/picshare/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedAlbum struct {
	Title  string   `json:"title"`
	Photos []string `json:"photos"`
}

func exerciseProvider(t *testing.T, p Provider) {
	t.Helper()
	ctx := context.Background()
	key := PublicAlbum.Build("share-code")

	var got cachedAlbum
	assert.True(t, IsCacheMiss(p.Get(ctx, key, &got)))

	want := cachedAlbum{Title: "Trip", Photos: []string{"a.jpg", "b.jpg"}}
	require.NoError(t, p.Set(ctx, key, want, time.Minute))

	require.NoError(t, p.Get(ctx, key, &got))
	assert.Equal(t, want, got)

	exists, err := p.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, p.Delete(ctx, key))
	assert.True(t, IsCacheMiss(p.Get(ctx, key, &got)))
	assert.NoError(t, p.Health(ctx))
}

func TestMemoryCache(t *testing.T) {
	p, err := memory.NewMemory(memory.Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	defer p.Close()

	exerciseProvider(t, p)
}

// TestRedisCache 需要 PICSHARE_TEST_REDIS_ADDR 指向可用的 Redis
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("PICSHARE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PICSHARE_TEST_REDIS_ADDR not set")
	}
	p, err := redis.NewRedis(context.Background(), redis.Config{Address: addr, DB: 15})
	require.NoError(t, err)
	defer p.Close()

	exerciseProvider(t, p)
}

func TestNewFactory(t *testing.T) {
	p, err := NewFactory(&config.Config{CacheType: "memory", CacheMaxSizeMB: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "memory", p.Name())
	_ = p.Close()

	_, err = NewFactory(&config.Config{CacheType: "memcached"}, nil)
	assert.Error(t, err)
}

func TestKeyBuilder(t *testing.T) {
	assert.Equal(t, "picshare:public_album:abc", PublicAlbum.Build("abc"))
	assert.Equal(t, "picshare:public_album", PublicAlbum.Build())
	assert.Equal(t, "picshare:dashboard:stats", Dashboard.Build("stats"))
	assert.Equal(t, "picshare:x:a:b", NewKeyBuilder("x").Build("a", "b"))
}
