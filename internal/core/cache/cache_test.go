package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type principal struct {
	ID   uint64 `json:"id"`
	Role string `json:"role"`
}

func TestNew_EmptyAddrDisablesCache(t *testing.T) {
	assert.Nil(t, New("", "", 0, time.Minute))
}

func TestNilCache_Passthrough(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	calls := 0
	got, err := GetOrLoadJSON(c, ctx, "user:1", 0, func(context.Context) (*principal, error) {
		calls++
		return &principal{ID: 1, Role: "manager"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, &principal{ID: 1, Role: "manager"}, got)

	_, err = GetOrLoadJSON(c, ctx, "user:1", 0, func(context.Context) (*principal, error) {
		calls++
		return &principal{ID: 1, Role: "manager"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	c.Delete(ctx, "user:1")
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Close())
}

func TestUnreachableRedis_FallsBackToLoader(t *testing.T) {
	c := &Cache{
		RDB: redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		}),
		TTL: time.Minute,
	}
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	got, err := GetOrLoadJSON(c, ctx, "user:9", 0, func(context.Context) (*principal, error) {
		return &principal{ID: 9, Role: "employee"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(9), got.ID)

	boom := errors.New("not found")
	_, err = GetOrLoadJSON(c, ctx, "user:10", 0, func(context.Context) (*principal, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	c.Delete(ctx, "user:9")
}

func TestGetOrLoadJSON_HitAndDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	role := "employee"
	calls := 0
	load := func(context.Context) (*principal, error) {
		calls++
		return &principal{ID: 7, Role: role}, nil
	}

	got, err := GetOrLoadJSON(c, ctx, "user:7", 0, load)
	require.NoError(t, err)
	assert.Equal(t, "employee", got.Role)
	assert.Equal(t, time.Minute, mr.TTL("user:7"))

	// 命中缓存，不回源
	role = "manager"
	got, err = GetOrLoadJSON(c, ctx, "user:7", 0, load)
	require.NoError(t, err)
	assert.Equal(t, "employee", got.Role)
	assert.Equal(t, 1, calls)

	c.Delete(ctx, "user:7")
	got, err = GetOrLoadJSON(c, ctx, "user:7", 0, load)
	require.NoError(t, err)
	assert.Equal(t, "manager", got.Role)
	assert.Equal(t, 2, calls)
}

func TestGetOrLoad_ZeroTTLStillExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0, 0)
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.GetOrLoad(context.Background(), "k", 0, func(context.Context) ([]byte, error) {
		return []byte(`"v"`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, mr.TTL("k"))
}
