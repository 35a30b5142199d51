package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// Delete 显式级联：关注边（双向）、点过的赞、自己推文上的赞、推文、用户
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	return translate(r.db.WithContext(ctx).Save(u).Error)
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	return r.first(ctx, "api_key = ?", apiKey)
}

func (r *userRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	steps := []struct {
		name string
		run  func() error
	}{
		{"follows", func() error {
			return db.Where("follower_id = ? OR following_id = ?", id, id).Delete(&model.Follow{}).Error
		}},
		{"likes given", func() error {
			return db.Where("user_id = ?", id).Delete(&model.Like{}).Error
		}},
		{"likes received", func() error {
			authored := db.Session(&gorm.Session{NewDB: true}).Model(&model.Message{}).Select("id").Where("user_id = ?", id)
			return db.Where("message_id IN (?)", authored).Delete(&model.Like{}).Error
		}},
		{"messages", func() error {
			return db.Where("user_id = ?", id).Delete(&model.Message{}).Error
		}},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return fmt.Errorf("delete user %d %s: %w", id, s.name, err)
		}
	}
	res := db.Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
