package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisJSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	var got payload
	ok, err := RedisGetJSON(ctx, rdb, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RedisSetJSON(ctx, rdb, "k", payload{Name: "alice"}, time.Minute))
	ok, err = RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", got.Name)

	mr.FastForward(2 * time.Minute)
	ok, err = RedisGetJSON(ctx, rdb, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, RedisSetJSON(ctx, rdb, "k2", payload{Name: "bob"}, 0))
	require.NoError(t, RedisDel(ctx, rdb, "k2"))
	assert.False(t, mr.Exists("k2"))
}
