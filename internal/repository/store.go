package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories 绑定在同一个会话（通常是同一个事务）上的仓储集合
type Repositories struct {
	Users    UserRepository
	Follows  FollowRepository
	Messages MessageRepository
	Likes    LikeRepository
}

func newRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Follows:  NewFollowRepository(db),
		Messages: NewMessageRepository(db),
		Likes:    NewLikeRepository(db),
	}
}

// Store 持有连接池；业务代码只通过 InTx 拿到事务内的仓储
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// InTx 每次调用开一个事务，fn 返回错误或 panic 时回滚
func (s *Store) InTx(ctx context.Context, fn func(r *Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

// Ping 健康检查
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
