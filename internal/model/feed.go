package model

import "time"

// FeedEntry 信息流中的一条：作者 + 全部点赞用户
type FeedEntry struct {
	ID        int64         `json:"id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Author    UserSummary   `json:"author"`
	Likes     []UserSummary `json:"likes"`
}

// Page 分页；Limit 为 0 表示不分页
type Page struct {
	Limit  int `form:"limit" json:"limit" binding:"omitempty,min=0,max=200"`
	Offset int `form:"offset" json:"offset" binding:"omitempty,min=0"`
}
