package model

import "time"

// Like 点赞，(user_id, message_id) 唯一
type Like struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	UserID    int64 `gorm:"not null;uniqueIndex:ux_likes_user_message,priority:1"`
	MessageID int64 `gorm:"not null;uniqueIndex:ux_likes_user_message,priority:2;index:idx_likes_message"`
	CreatedAt time.Time

	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Message *Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Like) TableName() string { return "likes" }

// Models 需要迁移的全部模型，按依赖顺序
func Models() []any {
	return []any{&User{}, &Message{}, &Like{}, &Follow{}}
}
