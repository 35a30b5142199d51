package model

import "time"

// EmailCodeEmpty 未下发验证码时的占位值
const EmailCodeEmpty = "empty"

// User 账号
// 生命周期: 注册后 active && !verified -> 验证码匹配后 verified -> 管理员封禁后 !active
type User struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Username       string    `json:"name" gorm:"type:varchar(60);uniqueIndex;not null"`
	Email          string    `json:"-" gorm:"type:varchar(120);uniqueIndex;not null"`
	HashedPassword string    `json:"-" gorm:"not null"`
	APIKey         string    `json:"-" gorm:"column:api_key;type:varchar(64);uniqueIndex;not null"`
	EmailCode      string    `json:"-" gorm:"type:varchar(16);not null;default:empty"`
	IsActive       bool      `json:"-" gorm:"not null"`
	IsSuperuser    bool      `json:"-" gorm:"not null"`
	IsVerified     bool      `json:"-" gorm:"not null"`
	RegisteredAt   time.Time `json:"-" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// Blocked 已验证但被停用
func (u *User) Blocked() bool { return u.IsVerified && !u.IsActive }

// Pending 等待邮箱验证
func (u *User) Pending() bool { return u.IsActive && !u.IsVerified }

// UserSummary 对外展示用的最小用户信息
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"name"`
}

func (u *User) Summary() UserSummary { return UserSummary{ID: u.ID, Username: u.Username} }

// Summaries 批量转换
func Summaries(users []*User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}
