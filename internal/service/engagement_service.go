package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

// EngagementService 点赞；重复点赞/取消不存在的赞都会报 Conflict
type EngagementService interface {
	Like(ctx context.Context, userID, messageID int64) error
	Unlike(ctx context.Context, userID, messageID int64) error
	// HasLiked 不存在时返回 nil, nil
	HasLiked(ctx context.Context, userID, messageID int64) (*model.Like, error)
}

type engagementService struct {
	store       *repository.Store
	invalidator FeedInvalidator
}

func NewEngagementService(store *repository.Store, invalidator FeedInvalidator) EngagementService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	return &engagementService{store: store, invalidator: invalidator}
}

func (s *engagementService) Like(ctx context.Context, userID, messageID int64) error {
	var authorID int64
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		m, err := getMessage(ctx, r, messageID)
		if err != nil {
			return err
		}
		authorID = m.AuthorID
		existing, err := findLike(ctx, r, userID, messageID)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflict("like", messageID, "already liked")
		}
		if _, err := r.Likes.Create(ctx, userID, messageID); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("like", messageID, "already liked")
			}
			return fmt.Errorf("create like: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	invalidateAudience(ctx, s.store, s.invalidator, authorID)
	return nil
}

func (s *engagementService) Unlike(ctx context.Context, userID, messageID int64) error {
	var authorID int64
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		m, err := getMessage(ctx, r, messageID)
		if err != nil {
			return err
		}
		authorID = m.AuthorID
		existing, err := findLike(ctx, r, userID, messageID)
		if err != nil {
			return err
		}
		if existing == nil {
			return conflict("like", messageID, "not liked")
		}
		removed, err := r.Likes.Delete(ctx, userID, messageID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if !removed {
			return conflict("like", messageID, "not liked")
		}
		return nil
	})
	if err != nil {
		return err
	}
	invalidateAudience(ctx, s.store, s.invalidator, authorID)
	return nil
}

func (s *engagementService) HasLiked(ctx context.Context, userID, messageID int64) (*model.Like, error) {
	var like *model.Like
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		var err error
		like, err = findLike(ctx, r, userID, messageID)
		return err
	})
	return like, err
}

func findLike(ctx context.Context, r *repository.Repositories, userID, messageID int64) (*model.Like, error) {
	l, err := r.Likes.Get(ctx, userID, messageID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get like: %w", err)
	}
	return l, nil
}

func getMessage(ctx context.Context, r *repository.Repositories, id int64) (*model.Message, error) {
	m, err := r.Messages.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("message", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}
