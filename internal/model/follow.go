package model

import "time"

// Follow 关注关系（Follower 关注 Following）
// 复合主键 (follower_id, following_id) 即唯一约束，避免重复关注；
// 两端用户删除时级联删除该边。
type Follow struct {
	FollowerID  int64     `gorm:"primaryKey;autoIncrement:false"`
	FollowingID int64     `gorm:"primaryKey;autoIncrement:false;index:idx_follow_following"`
	CreatedAt   time.Time

	Follower  *User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Following *User `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
}

func (Follow) TableName() string { return "user_to_user" }
