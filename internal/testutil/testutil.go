// Package testutil 测试用的内存库与数据构造
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/pkg/database"
)

// NewDB 每个测试一个独立的 sqlite 内存库（带外键），已迁移
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:   "sqlite",
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { database.Close(db) })
	return db
}

// SeedUser 直接落一个已激活用户
func SeedUser(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{
		Username:       name,
		Email:          name + "@example.com",
		HashedPassword: "x",
		APIKey:         uuid.NewString(),
		EmailCode:      model.EmailCodeEmpty,
		IsActive:       true,
		IsVerified:     true,
	}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}
