package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/testutil"
)

func TestFollowRepository_CreateIsUniquePerPair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a := testutil.SeedUser(t, db, "alice")
	b := testutil.SeedUser(t, db, "bob")

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	err := repo.Create(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, ErrDuplicate)

	// 反向是另一条边
	require.NoError(t, repo.Create(ctx, b.ID, a.ID))

	ok, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFollowRepository_CreateUnknownUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	a := testutil.SeedUser(t, db, "alice")

	err := repo.Create(context.Background(), a.ID, 404)
	assert.ErrorIs(t, err, ErrForeignKey)
}

func TestFollowRepository_DeleteReportsAffected(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a := testutil.SeedUser(t, db, "alice")
	b := testutil.SeedUser(t, db, "bob")

	removed, err := repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	removed, err = repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	ok, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowRepository_ListBothDirections(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a := testutil.SeedUser(t, db, "alice")
	b := testutil.SeedUser(t, db, "bob")
	c := testutil.SeedUser(t, db, "carol")

	require.NoError(t, repo.Create(ctx, a.ID, b.ID))
	require.NoError(t, repo.Create(ctx, a.ID, c.ID))
	require.NoError(t, repo.Create(ctx, c.ID, a.ID))

	following, err := repo.ListFollowing(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, following, 2)
	assert.ElementsMatch(t, []string{"bob", "carol"}, []string{following[0].Username, following[1].Username})

	followers, err := repo.ListFollowers(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, c.ID, followers[0].ID)

	ids, err := repo.ListFollowingIDs(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID}, ids)

	ids, err = repo.ListFollowerIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids)

	ids, err = repo.ListFollowingIDs(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
