package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/feed"
)

func newStore(t *testing.T, globalLimit, userLimit int64) (feed.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, globalLimit, userLimit), mr
}

func item(userID string, n int) feed.ActivityItem {
	return feed.ActivityItem{
		PostID:    fmt.Sprintf("post-%d", n),
		UserID:    userID,
		Username:  feed.DefaultUsername(userID),
		EventType: "post.created",
		Timestamp: time.Date(2024, 5, 1, 10, 0, n, 0, time.UTC),
		Title:     fmt.Sprintf("title %d", n),
	}
}

func TestRedisStore_PushNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t, 0, 0)

	require.NoError(t, store.Push(ctx, item("u1", 1)))
	require.NoError(t, store.Push(ctx, item("u2", 2)))

	global, err := store.Range(ctx, feed.GlobalKey, 0, 10)
	require.NoError(t, err)
	require.Len(t, global, 2)
	assert.Equal(t, "post-2", global[0].PostID)
	assert.Equal(t, "post-1", global[1].PostID)

	mine, err := store.Range(ctx, feed.UserKey("u1"), 0, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "User u1", mine[0].Username)
	assert.True(t, mine[0].Timestamp.Equal(item("u1", 1).Timestamp))
}

func TestRedisStore_TrimsToLimits(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, 0, 0)

	for i := 0; i < 1005; i++ {
		require.NoError(t, store.Push(ctx, item("busy", i)))
	}

	global, err := store.Len(ctx, feed.GlobalKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), global)

	user, err := store.Len(ctx, feed.UserKey("busy"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), user)

	// phần tử cũ nhất còn lại trong user list là item thứ 905
	oldest, err := store.Range(ctx, feed.UserKey("busy"), 99, 1)
	require.NoError(t, err)
	require.Len(t, oldest, 1)
	assert.Equal(t, "post-905", oldest[0].PostID)

	keys := mr.Keys()
	assert.ElementsMatch(t, []string{feed.GlobalKey, "feed:activity:user:busy"}, keys)
}

func TestRedisStore_RangePaginatesAndSkipsCorrupt(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, 10, 5)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.Push(ctx, item("u1", i)))
	}
	_, err := mr.Lpush(feed.GlobalKey, "{not json")
	require.NoError(t, err)

	page, err := store.Range(ctx, feed.GlobalKey, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 1, "corrupt head entry is dropped")
	assert.Equal(t, "post-3", page[0].PostID)

	page, err = store.Range(ctx, feed.GlobalKey, 3, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "post-1", page[0].PostID)
	assert.Equal(t, "post-0", page[1].PostID)

	empty, err := store.Range(ctx, feed.UserKey("nobody"), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	store, mr := newStore(t, 0, 0)
	mr.Close()

	err := store.Push(ctx, item("u1", 1))
	assert.ErrorIs(t, err, feed.ErrStoreUnavailable)

	_, err = store.Len(ctx, feed.GlobalKey)
	assert.ErrorIs(t, err, feed.ErrStoreUnavailable)
	assert.Error(t, store.Ping(ctx))
}
