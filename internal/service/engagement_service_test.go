package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/model"
)

func TestEngagementService_LikeUnlikeCycle(t *testing.T) {
	f := newFixture(t)
	msgs := NewMessageService(f.store, nil, 0)
	svc := NewEngagementService(f.store, nil)
	ctx := context.Background()
	a, u := f.user(t, "alice"), f.user(t, "ursula")
	m, err := msgs.Create(ctx, a.ID, "hello")
	require.NoError(t, err)

	require.NoError(t, svc.Like(ctx, u.ID, m.ID))
	assertKind(t, svc.Like(ctx, u.ID, m.ID), ErrConflict)

	l, err := svc.HasLiked(ctx, u.ID, m.ID)
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, m.ID, l.MessageID)

	require.NoError(t, svc.Unlike(ctx, u.ID, m.ID))
	assertKind(t, svc.Unlike(ctx, u.ID, m.ID), ErrConflict)

	l, err = svc.HasLiked(ctx, u.ID, m.ID)
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestEngagementService_UnknownMessage(t *testing.T) {
	f := newFixture(t)
	svc := NewEngagementService(f.store, nil)
	u := f.user(t, "ursula")
	assertKind(t, svc.Like(context.Background(), u.ID, 77), ErrNotFound)
	assertKind(t, svc.Unlike(context.Background(), u.ID, 77), ErrNotFound)
}

func TestEngagementService_ConcurrentLikesKeepOne(t *testing.T) {
	f := newFixture(t)
	msgs := NewMessageService(f.store, nil, 0)
	svc := NewEngagementService(f.store, nil)
	ctx := context.Background()
	a, u := f.user(t, "alice"), f.user(t, "ursula")
	m, err := msgs.Create(ctx, a.ID, "race me")
	require.NoError(t, err)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Like(ctx, u.ID, m.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assertKind(t, err, ErrConflict)
	}
	assert.Equal(t, 1, ok)

	var cnt int64
	require.NoError(t, f.db.Model(&model.Like{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestEngagementService_InvalidatesAuthorAudience(t *testing.T) {
	f := newFixture(t)
	inv := &recordingInvalidator{}
	graph := NewGraphService(f.store, nil)
	msgs := NewMessageService(f.store, nil, 0)
	svc := NewEngagementService(f.store, inv)
	ctx := context.Background()
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")
	require.NoError(t, graph.Follow(ctx, b.ID, a.ID))
	require.NoError(t, graph.Follow(ctx, c.ID, a.ID))
	m, err := msgs.Create(ctx, a.ID, "hi")
	require.NoError(t, err)

	require.NoError(t, svc.Like(ctx, b.ID, m.ID))
	assert.ElementsMatch(t, []int64{b.ID, c.ID}, inv.ids)
}
