package entity

import (
	"time"
)

// Novel 小说实体，一部连载小说的根对象
type Novel struct {
	NovelID   string    `json:"novel_id" gorm:"type:varchar(128);primaryKey"`
	Topic     string    `json:"topic" gorm:"type:text;not null"`
	UserID    string    `json:"user_id" gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Novel) TableName() string {
	return "novels"
}

// NewNovel 创建新小说
func NewNovel(novelID, topic, userID string) *Novel {
	now := time.Now()
	return &Novel{
		NovelID:   novelID,
		Topic:     topic,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// OwnedBy 检查小说归属
func (n *Novel) OwnedBy(userID string) bool {
	return n.UserID == userID
}
