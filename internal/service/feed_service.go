package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/pkg/logger"
)

// FeedInvalidator 按用户失效信息流缓存
type FeedInvalidator interface {
	InvalidateUsers(ctx context.Context, userIDs ...int64)
}

// FeedCache 信息流 cache-aside；出错只记日志，不影响正确性
type FeedCache interface {
	FeedInvalidator
	Get(ctx context.Context, userID int64, page model.Page) ([]model.FeedEntry, bool)
	Set(ctx context.Context, userID int64, page model.Page, entries []model.FeedEntry)
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateUsers(context.Context, ...int64) {}

// invalidateAudience 作者的全部粉丝的信息流失效（提交之后调用）
func invalidateAudience(ctx context.Context, store *repository.Store, inv FeedInvalidator, authorID int64) {
	if _, ok := inv.(nopInvalidator); ok {
		return
	}
	var ids []int64
	err := store.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		ids, err = r.Follows.ListFollowerIDs(ctx, authorID)
		return err
	})
	if err != nil {
		logger.Warn("load audience for invalidation", zap.Int64("author", authorID), zap.Error(err))
		return
	}
	if len(ids) > 0 {
		inv.InvalidateUsers(ctx, ids...)
	}
}

// FeedService 按时间倒序拼装关注对象的推文
type FeedService interface {
	AssembleFeed(ctx context.Context, userID int64, page model.Page) ([]model.FeedEntry, error)
}

type feedService struct {
	store *repository.Store
	cache FeedCache
}

// NewFeedService cache 可为 nil
func NewFeedService(store *repository.Store, cache FeedCache) FeedService {
	return &feedService{store: store, cache: cache}
}

func (s *feedService) AssembleFeed(ctx context.Context, userID int64, page model.Page) ([]model.FeedEntry, error) {
	if page.Limit < 0 || page.Offset < 0 {
		return nil, validation("limit and offset must not be negative")
	}
	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx, userID, page); ok {
			return entries, nil
		}
	}

	entries := make([]model.FeedEntry, 0)
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		following, err := r.Follows.ListFollowingIDs(ctx, userID)
		if err != nil {
			return fmt.Errorf("list following: %w", err)
		}
		if len(following) == 0 {
			return nil
		}
		msgs, err := r.Messages.ListByAuthors(ctx, following, page.Limit, page.Offset)
		if err != nil {
			return fmt.Errorf("list messages: %w", err)
		}
		if len(msgs) == 0 {
			return nil
		}
		ids := make([]int64, len(msgs))
		for i, m := range msgs {
			ids[i] = m.ID
		}
		likes, err := r.Likes.ListByMessages(ctx, ids)
		if err != nil {
			return fmt.Errorf("list likes: %w", err)
		}
		likers := make(map[int64][]model.UserSummary, len(msgs))
		for _, l := range likes {
			if l.User != nil {
				likers[l.MessageID] = append(likers[l.MessageID], l.User.Summary())
			}
		}
		for _, m := range msgs {
			e := model.FeedEntry{
				ID:        m.ID,
				Content:   m.Content,
				CreatedAt: m.CreatedAt,
				Likes:     likers[m.ID],
			}
			if e.Likes == nil {
				e.Likes = []model.UserSummary{}
			}
			if m.Author != nil {
				e.Author = m.Author.Summary()
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, userID, page, entries)
	}
	return entries, nil
}
