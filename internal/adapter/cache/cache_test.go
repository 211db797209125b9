package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/tripweaver/internal/adapter"
)

func setupRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedis(RedisOptions{URL: fmt.Sprintf("redis://%s", mr.Addr()), TTL: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = c.Close()
	})
	return c, mr
}

func TestKeyString(t *testing.T) {
	k := Key{Category: "activities", Destination: "  Cape  Town ", Discriminator: "Fine Dining"}
	assert.Equal(t, "tripweaver:cache:activities:cape_town:fine_dining", k.String())
}

func TestRedisRoundTrip(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()
	key := Key{Category: "activities", Destination: "Dubai", Discriminator: "golf"}

	_, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Put(ctx, key, []byte(`[{"title":"x"}]`)))
	data, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `[{"title":"x"}]`, string(data))

	assert.Equal(t, time.Hour, mr.TTL(key.String()))
	mr.FastForward(2 * time.Hour)
	_, found, err = c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisConnectFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedis(RedisOptions{URL: "redis://" + addr, ConnectTimeout: 200 * time.Millisecond})
	assert.Error(t, err)
}

func TestRedisServerDownIsUnavailable(t *testing.T) {
	c, mr := setupRedis(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), Key{Category: "activities", Destination: "x"})
	require.Error(t, err)
	assert.True(t, adapter.IsUnavailable(err))
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	require.NoError(t, c.Put(context.Background(), Key{}, []byte("x")))
	_, found, err := c.Get(context.Background(), Key{})
	require.NoError(t, err)
	assert.False(t, found)
}
