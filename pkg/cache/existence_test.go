package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraCache "bookshelf-backend/internal/infrastructure/cache"
	"bookshelf-backend/pkg/cache"
)

const reviewKey = "user:42:book:7"

func newExistenceCache(t *testing.T, opts cache.ExistenceOptions) (*cache.ExistenceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	if opts.PresentSuffix == "" {
		opts.PresentSuffix = "review"
		opts.AbsentSuffix = "no_review"
	}
	return cache.NewExistenceCache(infraCache.NewRedisCache(client), opts), mr
}

func TestExistenceCache_PresentThenInvalidate(t *testing.T) {
	ctx := context.Background()
	ec, mr := newExistenceCache(t, cache.ExistenceOptions{})

	ec.RecordPresent(ctx, reviewKey, "rev-1")

	got := ec.Check(ctx, reviewKey)
	assert.Equal(t, cache.Present, got.State)
	assert.Equal(t, "rev-1", got.Value)

	stored, err := mr.Get("user:42:book:7:review")
	require.NoError(t, err)
	assert.Equal(t, "rev-1", stored)
	assert.Equal(t, cache.DefaultPresentTTL, mr.TTL("user:42:book:7:review"))

	ec.Invalidate(ctx, reviewKey)
	assert.Equal(t, cache.Unknown, ec.Check(ctx, reviewKey).State)
	assert.False(t, mr.Exists("user:42:book:7:review"))
}

func TestExistenceCache_InvalidateMatching(t *testing.T) {
	ctx := context.Background()
	ec, mr := newExistenceCache(t, cache.ExistenceOptions{})

	ec.RecordPresent(ctx, "user:42:book:7", "rev-1")
	ec.RecordAbsent(ctx, "user:43:book:7")
	ec.RecordPresent(ctx, "user:42:book:8", "rev-2")
	require.NoError(t, mr.Set("user:42:book:7:other", "x"))

	ec.InvalidateMatching(ctx, "user:*:book:7")

	assert.Equal(t, cache.Unknown, ec.Check(ctx, "user:42:book:7").State)
	assert.Equal(t, cache.Unknown, ec.Check(ctx, "user:43:book:7").State)
	assert.Equal(t, cache.Present, ec.Check(ctx, "user:42:book:8").State)
	assert.True(t, mr.Exists("user:42:book:7:other"))
}

func TestExistenceCache_PositiveWinsOverLaterAbsent(t *testing.T) {
	ctx := context.Background()
	ec, mr := newExistenceCache(t, cache.ExistenceOptions{})

	ec.RecordPresent(ctx, reviewKey, "rev-1")
	ec.RecordAbsent(ctx, reviewKey)

	got := ec.Check(ctx, reviewKey)
	assert.Equal(t, cache.Present, got.State)
	assert.Equal(t, "rev-1", got.Value)
	assert.False(t, mr.Exists("user:42:book:7:no_review"))
}

func TestExistenceCache_PresentClearsAbsent(t *testing.T) {
	ctx := context.Background()
	ec, mr := newExistenceCache(t, cache.ExistenceOptions{})

	ec.RecordAbsent(ctx, reviewKey)
	assert.Equal(t, cache.Absent, ec.Check(ctx, reviewKey).State)
	assert.Equal(t, cache.DefaultAbsentTTL, mr.TTL("user:42:book:7:no_review"))

	ec.RecordPresent(ctx, reviewKey, "rev-2")
	assert.False(t, mr.Exists("user:42:book:7:no_review"))
	assert.Equal(t, cache.Present, ec.Check(ctx, reviewKey).State)
}

func TestExistenceCache_AbsentExpires(t *testing.T) {
	ctx := context.Background()
	ec, mr := newExistenceCache(t, cache.ExistenceOptions{AbsentTTL: time.Minute})

	ec.RecordAbsent(ctx, reviewKey)
	assert.Equal(t, cache.Absent, ec.Check(ctx, reviewKey).State)

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, cache.Unknown, ec.Check(ctx, reviewKey).State)
}

func TestExistenceCache_FailureDegradesToUnknown(t *testing.T) {
	ctx := context.Background()
	var seen []cache.Presence
	ec, mr := newExistenceCache(t, cache.ExistenceOptions{
		OnCheck: func(p cache.Presence) { seen = append(seen, p) },
	})

	ec.RecordPresent(ctx, reviewKey, "rev-1")
	mr.SetError("ERR cache offline")

	assert.Equal(t, cache.Unknown, ec.Check(ctx, reviewKey).State)

	// writes are dropped silently
	ec.RecordPresent(ctx, reviewKey, "rev-2")
	ec.RecordAbsent(ctx, reviewKey)
	ec.Invalidate(ctx, reviewKey)

	loads := 0
	value, ok, err := ec.Lookup(ctx, reviewKey, func(context.Context) (string, bool, error) {
		loads++
		return "rev-db", true, nil
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "rev-db", value)
	assert.Equal(t, 1, loads)
	assert.Equal(t, []cache.Presence{cache.Unknown, cache.Unknown}, seen)
}

func TestExistenceCache_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("populates positive line on miss", func(t *testing.T) {
		ec, _ := newExistenceCache(t, cache.ExistenceOptions{})
		loads := 0
		load := func(context.Context) (string, bool, error) {
			loads++
			return "rev-9", true, nil
		}

		for i := 0; i < 3; i++ {
			value, ok, err := ec.Lookup(ctx, reviewKey, load)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "rev-9", value)
		}
		assert.Equal(t, 1, loads)
	})

	t.Run("populates negative line on miss", func(t *testing.T) {
		ec, _ := newExistenceCache(t, cache.ExistenceOptions{})
		loads := 0
		load := func(context.Context) (string, bool, error) {
			loads++
			return "", false, nil
		}

		_, ok, err := ec.Lookup(ctx, reviewKey, load)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, cache.Absent, ec.Check(ctx, reviewKey).State)

		_, _, _ = ec.Lookup(ctx, reviewKey, load)
		assert.Equal(t, 1, loads)
	})

	t.Run("store error is returned and nothing cached", func(t *testing.T) {
		ec, mr := newExistenceCache(t, cache.ExistenceOptions{})
		boom := errors.New("db down")

		_, _, err := ec.Lookup(ctx, reviewKey, func(context.Context) (string, bool, error) {
			return "", false, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, mr.Keys())
	})
}

func TestPresence_String(t *testing.T) {
	assert.Equal(t, "present", cache.Present.String())
	assert.Equal(t, "absent", cache.Absent.String())
	assert.Equal(t, "unknown", cache.Unknown.String())
}
