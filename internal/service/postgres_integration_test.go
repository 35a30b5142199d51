//go:build integration
// +build integration

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/testutil"
)

// holdInsert 在未提交的事务里先写入一行，等 op 阻塞在同一唯一键上后再提交，
// 使 op 的存在性检查通过、插入输给唯一约束
func holdInsert(t *testing.T, db *gorm.DB, row any, op func() error) error {
	t.Helper()
	tx := db.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, tx.Create(row).Error)

	errCh := make(chan error, 1)
	go func() { errCh <- op() }()

	require.Eventually(t, func() bool {
		var waiting int64
		db.Raw("SELECT count(*) FROM pg_stat_activity WHERE wait_event_type = 'Lock'").Scan(&waiting)
		return waiting > 0
	}, 5*time.Second, 20*time.Millisecond, "insert never blocked on the unique key")

	require.NoError(t, tx.Commit().Error)
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("operation did not return after commit")
		return nil
	}
}

func TestPostgres_UniqueRaceSurfacesAsConflict(t *testing.T) {
	db := testutil.NewPostgres(t)
	store := repository.NewStore(db)
	ctx := context.Background()

	alice := testutil.SeedUser(t, db, "alice")
	bob := testutil.SeedUser(t, db, "bob")
	msg := &model.Message{Content: "hello", AuthorID: bob.ID}
	require.NoError(t, db.Omit("Author").Create(msg).Error)

	t.Run("like", func(t *testing.T) {
		svc := NewEngagementService(store, nil)
		err := holdInsert(t, db, &model.Like{UserID: alice.ID, MessageID: msg.ID}, func() error {
			return svc.Like(ctx, alice.ID, msg.ID)
		})
		assertKind(t, err, ErrConflict)

		var n int64
		require.NoError(t, db.Model(&model.Like{}).Where("user_id = ? AND message_id = ?", alice.ID, msg.ID).Count(&n).Error)
		assert.EqualValues(t, 1, n)
	})

	t.Run("follow", func(t *testing.T) {
		svc := NewGraphService(store, nil)
		err := holdInsert(t, db, &model.Follow{FollowerID: alice.ID, FollowingID: bob.ID}, func() error {
			return svc.Follow(ctx, alice.ID, bob.ID)
		})
		assertKind(t, err, ErrConflict)

		ok, err := repository.NewFollowRepository(db).Exists(ctx, alice.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("concurrent likes keep one", func(t *testing.T) {
		carol := testutil.SeedUser(t, db, "carol")
		svc := NewEngagementService(store, nil)

		const n = 16
		start := make(chan struct{})
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				errs[i] = svc.Like(ctx, carol.ID, msg.ID)
			}(i)
		}
		close(start)
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
	})
}
