package model

import "time"

// Message 推文，仅作者可删除；删除时级联删除点赞
type Message struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Content   string    `json:"content" gorm:"column:tweet_data;type:varchar(280);not null"`
	AuthorID  int64     `json:"-" gorm:"column:user_id;not null;index:idx_tweets_user_created,priority:1"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_tweets_user_created,priority:2;index:idx_tweets_created"`

	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string { return "tweets" }
