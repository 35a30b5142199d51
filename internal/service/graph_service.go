package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
)

// Profile 用户概要 + 双向关注列表
type Profile struct {
	model.UserSummary
	Following []model.UserSummary `json:"following"`
	Followers []model.UserSummary `json:"followers"`
}

// GraphService 关系链服务
type GraphService interface {
	Follow(ctx context.Context, actorID, targetID int64) error
	Unfollow(ctx context.Context, actorID, targetID int64) error
	ListFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
	ListFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	Profile(ctx context.Context, userID int64) (*Profile, error)
}

type graphService struct {
	store       *repository.Store
	invalidator FeedInvalidator
}

func NewGraphService(store *repository.Store, invalidator FeedInvalidator) GraphService {
	if invalidator == nil {
		invalidator = nopInvalidator{}
	}
	return &graphService{store: store, invalidator: invalidator}
}

func (s *graphService) Follow(ctx context.Context, actorID, targetID int64) error {
	// 只看两个 id，不查库
	if actorID == targetID {
		return newError(ErrInvalidOperation, "user", targetID, "cannot follow yourself")
	}
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		if err := mustExistUser(ctx, r, targetID); err != nil {
			return err
		}
		exists, err := r.Follows.Exists(ctx, actorID, targetID)
		if err != nil {
			return fmt.Errorf("check follow: %w", err)
		}
		if exists {
			return conflict("follow", targetID, "already following")
		}
		if err := r.Follows.Create(ctx, actorID, targetID); err != nil {
			// 并发下输掉唯一约束
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("follow", targetID, "already following")
			}
			return fmt.Errorf("create follow: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidator.InvalidateUsers(ctx, actorID)
	return nil
}

func (s *graphService) Unfollow(ctx context.Context, actorID, targetID int64) error {
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		if err := mustExistUser(ctx, r, targetID); err != nil {
			return err
		}
		removed, err := r.Follows.Delete(ctx, actorID, targetID)
		if err != nil {
			return fmt.Errorf("delete follow: %w", err)
		}
		if !removed {
			return conflict("follow", targetID, "not following")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidator.InvalidateUsers(ctx, actorID)
	return nil
}

func (s *graphService) ListFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	return s.list(ctx, userID, func(r *repository.Repositories) ([]*model.User, error) {
		return r.Follows.ListFollowing(ctx, userID)
	})
}

func (s *graphService) ListFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	return s.list(ctx, userID, func(r *repository.Repositories) ([]*model.User, error) {
		return r.Follows.ListFollowers(ctx, userID)
	})
}

func (s *graphService) list(ctx context.Context, userID int64, load func(r *repository.Repositories) ([]*model.User, error)) ([]model.UserSummary, error) {
	var out []model.UserSummary
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		if err := mustExistUser(ctx, r, userID); err != nil {
			return err
		}
		users, err := load(r)
		if err != nil {
			return fmt.Errorf("list graph: %w", err)
		}
		out = model.Summaries(users)
		return nil
	})
	return out, err
}

func (s *graphService) Profile(ctx context.Context, userID int64) (*Profile, error) {
	var p *Profile
	err := s.store.InTx(ctx, func(r *repository.Repositories) error {
		u, err := r.Users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("user", userID)
			}
			return fmt.Errorf("get user: %w", err)
		}
		following, err := r.Follows.ListFollowing(ctx, userID)
		if err != nil {
			return fmt.Errorf("list following: %w", err)
		}
		followers, err := r.Follows.ListFollowers(ctx, userID)
		if err != nil {
			return fmt.Errorf("list followers: %w", err)
		}
		p = &Profile{
			UserSummary: u.Summary(),
			Following:   model.Summaries(following),
			Followers:   model.Summaries(followers),
		}
		return nil
	})
	return p, err
}

func mustExistUser(ctx context.Context, r *repository.Repositories, id int64) error {
	ok, err := r.Users.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !ok {
		return notFound("user", id)
	}
	return nil
}
