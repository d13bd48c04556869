package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Count int     `json:"count"`
		Ratio float64 `json:"ratio"`
	}

	in := payload{Name: "KELP", Count: 3, Ratio: 0.5}
	require.NoError(t, mc.Set(ctx, "k1", in, time.Minute))

	var out payload
	require.NoError(t, mc.Get(ctx, "k1", &out))
	assert.Equal(t, in, out)
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()

	var out string
	err := mc.Get(context.Background(), "absent", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k1", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var out string
	assert.ErrorIs(t, mc.Get(ctx, "k1", &out), ErrCacheMiss)

	ok, err := mc.Exists(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "view:1:KELP:0:1", 1, time.Minute))
	require.NoError(t, mc.Set(ctx, "view:1:SQUID:0:1", 2, time.Minute))
	require.NoError(t, mc.Set(ctx, "other:1", 3, time.Minute))

	require.NoError(t, mc.DeleteByPattern(ctx, BuildPattern("view:")))

	var out int
	assert.ErrorIs(t, mc.Get(ctx, "view:1:KELP:0:1", &out), ErrCacheMiss)
	assert.ErrorIs(t, mc.Get(ctx, "view:1:SQUID:0:1", &out), ErrCacheMiss)
	require.NoError(t, mc.Get(ctx, "other:1", &out))
	assert.Equal(t, 3, out)
}

func TestMemoryCacheEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	time.Sleep(time.Millisecond)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	// oldest entry went first
	var out int
	assert.ErrorIs(t, mc.Get(ctx, "a", &out), ErrCacheMiss)
	assert.NoError(t, mc.Get(ctx, "b", &out))
	assert.NoError(t, mc.Get(ctx, "c", &out))
}

func TestGenerateKeyWithParams(t *testing.T) {
	key := GenerateKeyWithParams("view", int64(42), "KELP", "0", 0.5)
	assert.Equal(t, "view:42:KELP:0:0.5", key)
}
