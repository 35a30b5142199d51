package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/testutil"
)

func TestMessageRepository_ListByAuthorsOrder(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	a := testutil.SeedUser(t, db, "alice")
	b := testutil.SeedUser(t, db, "bob")
	c := testutil.SeedUser(t, db, "carol")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	msgs := []*model.Message{
		{AuthorID: a.ID, Content: "t1", CreatedAt: base},
		{AuthorID: b.ID, Content: "t2", CreatedAt: base.Add(time.Minute)},
		{AuthorID: a.ID, Content: "t3", CreatedAt: base.Add(2 * time.Minute)},
		{AuthorID: b.ID, Content: "t3-tie", CreatedAt: base.Add(2 * time.Minute)},
		{AuthorID: c.ID, Content: "other", CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, m := range msgs {
		require.NoError(t, repo.Create(ctx, m))
	}

	got, err := repo.ListByAuthors(ctx, []int64{a.ID, b.ID}, 0, 0)
	require.NoError(t, err)
	contents := make([]string, len(got))
	for i, m := range got {
		contents[i] = m.Content
	}
	assert.Equal(t, []string{"t3-tie", "t3", "t2", "t1"}, contents)
	require.NotNil(t, got[0].Author)
	assert.Equal(t, "bob", got[0].Author.Username)

	page, err := repo.ListByAuthors(ctx, []int64{a.ID, b.ID}, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "t3", page[0].Content)
	assert.Equal(t, "t2", page[1].Content)

	none, err := repo.ListByAuthors(ctx, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMessageRepository_DeleteCascadesLikes(t *testing.T) {
	db := testutil.NewDB(t)
	messages := NewMessageRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()
	a := testutil.SeedUser(t, db, "alice")
	b := testutil.SeedUser(t, db, "bob")

	m := &model.Message{AuthorID: a.ID, Content: "hello", CreatedAt: time.Now().UTC()}
	require.NoError(t, messages.Create(ctx, m))
	_, err := likes.Create(ctx, b.ID, m.ID)
	require.NoError(t, err)

	require.NoError(t, messages.Delete(ctx, m.ID))

	_, err = messages.GetByID(ctx, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = likes.Get(ctx, b.ID, m.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, messages.Delete(ctx, m.ID), ErrNotFound)
}
