package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

// LikeRepository (user_id, message_id) 唯一
type LikeRepository interface {
	Create(ctx context.Context, userID, messageID int64) (*model.Like, error)
	Delete(ctx context.Context, userID, messageID int64) (bool, error)
	// Get 不存在时返回 ErrNotFound
	Get(ctx context.Context, userID, messageID int64) (*model.Like, error)
	// ListByMessages 按点赞 id 升序，预加载点赞用户
	ListByMessages(ctx context.Context, messageIDs []int64) ([]*model.Like, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Create(ctx context.Context, userID, messageID int64) (*model.Like, error) {
	l := &model.Like{UserID: userID, MessageID: messageID}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error; err != nil {
		return nil, translate(err)
	}
	return l, nil
}

func (r *likeRepository) Delete(ctx context.Context, userID, messageID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&model.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Get(ctx context.Context, userID, messageID int64) (*model.Like, error) {
	var l model.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		First(&l).Error
	if err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *likeRepository) ListByMessages(ctx context.Context, messageIDs []int64) ([]*model.Like, error) {
	res := make([]*model.Like, 0)
	if len(messageIDs) == 0 {
		return res, nil
	}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("message_id IN ?", messageIDs).
		Order("id").
		Find(&res).Error
	return res, err
}
