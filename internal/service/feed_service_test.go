package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/model"
)

type stubClock struct{ t time.Time }

func (c *stubClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func TestFeedService_ReverseChronologicalWithLikers(t *testing.T) {
	f := newFixture(t)
	graph := NewGraphService(f.store, nil)
	msgs := NewMessageService(f.store, nil, 0).(*messageService)
	clock := &stubClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	msgs.now = clock.now
	likes := NewEngagementService(f.store, nil)
	feed := NewFeedService(f.store, nil)
	ctx := context.Background()

	me, a, b, stranger := f.user(t, "me"), f.user(t, "alice"), f.user(t, "bob"), f.user(t, "stranger")
	require.NoError(t, graph.Follow(ctx, me.ID, a.ID))
	require.NoError(t, graph.Follow(ctx, me.ID, b.ID))

	t1, err := msgs.Create(ctx, a.ID, "t1")
	require.NoError(t, err)
	_, err = msgs.Create(ctx, stranger.ID, "not followed")
	require.NoError(t, err)
	t2, err := msgs.Create(ctx, b.ID, "t2")
	require.NoError(t, err)
	t3, err := msgs.Create(ctx, a.ID, "t3")
	require.NoError(t, err)

	require.NoError(t, likes.Like(ctx, stranger.ID, t3.ID))
	require.NoError(t, likes.Like(ctx, b.ID, t3.ID))

	entries, err := feed.AssembleFeed(ctx, me.ID, model.Page{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []int64{t3.ID, t2.ID, t1.ID}, []int64{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, a.Summary(), entries[0].Author)
	assert.Equal(t, []model.UserSummary{stranger.Summary(), b.Summary()}, entries[0].Likes)
	assert.NotNil(t, entries[1].Likes)
	assert.Empty(t, entries[1].Likes)

	page, err := feed.AssembleFeed(ctx, me.ID, model.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, t2.ID, page[0].ID)
}

func TestFeedService_EqualTimestampsTieBreakByID(t *testing.T) {
	f := newFixture(t)
	graph := NewGraphService(f.store, nil)
	msgs := NewMessageService(f.store, nil, 0).(*messageService)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msgs.now = func() time.Time { return fixed }
	feed := NewFeedService(f.store, nil)
	ctx := context.Background()

	me, a := f.user(t, "me"), f.user(t, "alice")
	require.NoError(t, graph.Follow(ctx, me.ID, a.ID))
	first, err := msgs.Create(ctx, a.ID, "first")
	require.NoError(t, err)
	second, err := msgs.Create(ctx, a.ID, "second")
	require.NoError(t, err)

	entries, err := feed.AssembleFeed(ctx, me.ID, model.Page{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestFeedService_FollowingNobodyIsEmpty(t *testing.T) {
	f := newFixture(t)
	feed := NewFeedService(f.store, nil)
	me := f.user(t, "me")

	entries, err := feed.AssembleFeed(context.Background(), me.ID, model.Page{})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	_, err = feed.AssembleFeed(context.Background(), me.ID, model.Page{Limit: -1})
	assertKind(t, err, ErrValidation)
}

type mapCache struct {
	recordingInvalidator
	data map[int64][]model.FeedEntry
	hits int
}

func (c *mapCache) Get(_ context.Context, userID int64, _ model.Page) ([]model.FeedEntry, bool) {
	e, ok := c.data[userID]
	if ok {
		c.hits++
	}
	return e, ok
}

func (c *mapCache) Set(_ context.Context, userID int64, _ model.Page, entries []model.FeedEntry) {
	c.data[userID] = entries
}

func (c *mapCache) InvalidateUsers(ctx context.Context, ids ...int64) {
	c.recordingInvalidator.InvalidateUsers(ctx, ids...)
	for _, id := range ids {
		delete(c.data, id)
	}
}

func TestFeedService_CacheAsideInvalidatedOnWrites(t *testing.T) {
	f := newFixture(t)
	cache := &mapCache{data: map[int64][]model.FeedEntry{}}
	graph := NewGraphService(f.store, cache)
	msgs := NewMessageService(f.store, cache, 0)
	feed := NewFeedService(f.store, cache)
	ctx := context.Background()
	me, a := f.user(t, "me"), f.user(t, "alice")

	entries, err := feed.AssembleFeed(ctx, me.ID, model.Page{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 关注后 me 的缓存被清掉
	require.NoError(t, graph.Follow(ctx, me.ID, a.ID))
	_, err = msgs.Create(ctx, a.ID, "fresh")
	require.NoError(t, err)

	entries, err = feed.AssembleFeed(ctx, me.ID, model.Page{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].Content)

	_, err = feed.AssembleFeed(ctx, me.ID, model.Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Contains(t, cache.ids, me.ID)
}
