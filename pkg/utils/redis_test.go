package utils

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestConcurrencyScriptsCompile(t *testing.T) {
	if concurrencyAcquireScript == nil || concurrencyReleaseScript == nil {
		t.Fatalf("expected scripts to be initialized")
	}
}

func TestConcurrencyCap_AcquireUpToLimit(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	ok, err := AcquireConcurrencyCap(ctx, rdb, "walk:acct", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = AcquireConcurrencyCap(ctx, rdb, "walk:acct", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = AcquireConcurrencyCap(ctx, rdb, "walk:acct", 2, time.Minute)
	require.NoError(t, err)
	require.False(t, ok, "third slot must be rejected")

	require.NoError(t, ReleaseConcurrencyCap(ctx, rdb, "walk:acct"))

	ok, err = AcquireConcurrencyCap(ctx, rdb, "walk:acct", 2, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConcurrencyCap_ReleaseDeletesEmptyKey(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	ok, err := AcquireConcurrencyCap(ctx, rdb, "walk:acct", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, mr.Exists("walk:acct"))

	require.NoError(t, ReleaseConcurrencyCap(ctx, rdb, "walk:acct"))
	require.False(t, mr.Exists("walk:acct"))
}

func TestConcurrencyCap_RejectsBadArgs(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()

	_, err := AcquireConcurrencyCap(ctx, rdb, "", 1, time.Minute)
	require.Error(t, err)
	_, err = AcquireConcurrencyCap(ctx, rdb, "k", 0, time.Minute)
	require.Error(t, err)
	_, err = AcquireConcurrencyCap(ctx, rdb, "k", 1, 0)
	require.Error(t, err)
	require.Error(t, ReleaseConcurrencyCap(ctx, rdb, ""))
}

func TestConcurrencyCap_NilClient(t *testing.T) {
	ctx := context.Background()
	var typed *redis.Client

	for _, rdb := range []redis.Scripter{nil, typed} {
		ok, err := AcquireConcurrencyCap(ctx, rdb, "k", 1, time.Minute)
		require.ErrorIs(t, err, errNilRedis)
		require.False(t, ok)
		require.ErrorIs(t, ReleaseConcurrencyCap(ctx, rdb, "k"), errNilRedis)
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	_, err := OpenRedis(context.Background(), RedisConfig{})
	require.Error(t, err)
}

func TestOpenRedis_Pings(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := OpenRedis(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, rdb.Close())
}
