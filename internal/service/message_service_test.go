package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_CreateValidates(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store, nil, 0)
	ctx := context.Background()
	a := f.user(t, "alice")

	_, err := svc.Create(ctx, a.ID, strings.Repeat("x", 281))
	assertKind(t, err, ErrValidation)
	_, err = svc.Create(ctx, a.ID, "   \n\t")
	assertKind(t, err, ErrValidation)

	// 按字符而不是字节计数
	m, err := svc.Create(ctx, a.ID, strings.Repeat("好", 280))
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, time.UTC, m.CreatedAt.Location())
	assert.WithinDuration(t, time.Now(), m.CreatedAt, 5*time.Second)
}

func TestMessageService_DeleteByOwnerCascades(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store, nil, 0)
	likes := NewEngagementService(f.store, nil)
	ctx := context.Background()
	a, b, c := f.user(t, "alice"), f.user(t, "bob"), f.user(t, "carol")

	m, err := svc.Create(ctx, a.ID, "bye")
	require.NoError(t, err)
	require.NoError(t, likes.Like(ctx, b.ID, m.ID))
	require.NoError(t, likes.Like(ctx, c.ID, m.ID))

	require.NoError(t, svc.Delete(ctx, a.ID, m.ID))

	_, err = svc.GetByID(ctx, m.ID)
	assertKind(t, err, ErrNotFound)
	for _, u := range []int64{a.ID, b.ID, c.ID} {
		l, err := likes.HasLiked(ctx, u, m.ID)
		require.NoError(t, err)
		assert.Nil(t, l)
	}
	assertKind(t, svc.Delete(ctx, a.ID, m.ID), ErrNotFound)
}

func TestMessageService_DeleteByOtherIsLocked(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store, nil, 0)
	ctx := context.Background()
	a, b := f.user(t, "alice"), f.user(t, "bob")

	m, err := svc.Create(ctx, a.ID, "mine")
	require.NoError(t, err)

	assertKind(t, svc.Delete(ctx, b.ID, m.ID), ErrConflict)

	got, err := svc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Content)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)
}

func TestMessageService_ListByAuthor(t *testing.T) {
	f := newFixture(t)
	svc := NewMessageService(f.store, nil, 10)
	ctx := context.Background()
	a := f.user(t, "alice")

	for _, s := range []string{"one", "two", "three"} {
		_, err := svc.Create(ctx, a.ID, s)
		require.NoError(t, err)
	}
	list, err := svc.ListByAuthor(ctx, a.ID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "three", list[0].Content)

	_, err = svc.Create(ctx, a.ID, "eleven char")
	assertKind(t, err, ErrValidation)

	_, err = svc.ListByAuthor(ctx, 4242, 0)
	assertKind(t, err, ErrNotFound)
}
