package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/social-feed/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	GetByID(ctx context.Context, id int64) (*model.Message, error)
	// Delete 先删点赞再删推文，需要在事务内调用
	Delete(ctx context.Context, id int64) error
	// ListByAuthors 按 created_at DESC, id DESC 排序并预加载作者；limit<=0 表示不限
	ListByAuthors(ctx context.Context, authorIDs []int64, limit, offset int) ([]*model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository { return &messageRepository{db: db} }

func (r *messageRepository) Create(ctx context.Context, m *model.Message) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error)
}

func (r *messageRepository) GetByID(ctx context.Context, id int64) (*model.Message, error) {
	var m model.Message
	if err := r.db.WithContext(ctx).Preload("Author").First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *messageRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("message_id = ?", id).Delete(&model.Like{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&model.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *messageRepository) ListByAuthors(ctx context.Context, authorIDs []int64, limit, offset int) ([]*model.Message, error) {
	res := make([]*model.Message, 0)
	if len(authorIDs) == 0 {
		return res, nil
	}
	q := r.db.WithContext(ctx).
		Preload("Author").
		Where("user_id IN ?", authorIDs).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	} else if offset > 0 {
		q = q.Offset(offset)
	}
	err := q.Find(&res).Error
	return res, err
}
