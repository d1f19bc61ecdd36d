package entity

import (
	"time"
)

// CharacterState 角色在某章结束时的状态快照
type CharacterState struct {
	ID            string            `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CharacterID   string            `json:"character_id" gorm:"type:uuid;index;not null"`
	CharacterName string            `json:"character_name" gorm:"type:varchar(128);not null"`
	ChapterID     string            `json:"chapter_id" gorm:"type:uuid;index;not null"`
	Location      string            `json:"location" gorm:"type:varchar(255)"`
	Emotion       string            `json:"emotion" gorm:"type:varchar(255)"`
	Goal          string            `json:"goal" gorm:"type:text"`
	Relationships map[string]string `json:"relationships" gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time         `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (CharacterState) TableName() string {
	return "character_states"
}
