package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

// FollowRepository 关注边 user_to_user，正反两个方向都从同一张表查
type FollowRepository interface {
	// Create 重复关注返回 ErrDuplicate（由复合主键保证）
	Create(ctx context.Context, followerID, followingID int64) error
	// Delete 返回是否真的删掉了一条边
	Delete(ctx context.Context, followerID, followingID int64) (bool, error)
	Exists(ctx context.Context, followerID, followingID int64) (bool, error)
	ListFollowing(ctx context.Context, userID int64) ([]*model.User, error)
	ListFollowers(ctx context.Context, userID int64) ([]*model.User, error)
	ListFollowingIDs(ctx context.Context, userID int64) ([]int64, error)
	ListFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID, followingID int64) error {
	f := &model.Follow{FollowerID: followerID, FollowingID: followingID}
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(f).Error)
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID int64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// listUsers 以 userID 为 side 一端，取另一端的用户
func (r *followRepository) listUsers(ctx context.Context, side, other string, userID int64) ([]*model.User, error) {
	res := make([]*model.User, 0)
	err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Joins("JOIN user_to_user ON user_to_user."+other+" = users.id").
		Where("user_to_user."+side+" = ?", userID).
		Order("user_to_user.created_at, users.id").
		Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowing(ctx context.Context, userID int64) ([]*model.User, error) {
	return r.listUsers(ctx, "follower_id", "following_id", userID)
}

func (r *followRepository) ListFollowers(ctx context.Context, userID int64) ([]*model.User, error) {
	return r.listUsers(ctx, "following_id", "follower_id", userID)
}

func (r *followRepository) listIDs(ctx context.Context, side, other string, userID int64) ([]int64, error) {
	ids := make([]int64, 0)
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where(side+" = ?", userID).
		Order(other).
		Pluck(other, &ids).Error
	return ids, err
}

func (r *followRepository) ListFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.listIDs(ctx, "follower_id", "following_id", userID)
}

func (r *followRepository) ListFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return r.listIDs(ctx, "following_id", "follower_id", userID)
}
