package entity

import (
	"time"
)

// WorldSetting 世界观设定实体，每部小说初始化时写入一条
type WorldSetting struct {
	ID              string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID         string    `json:"novel_id" gorm:"type:varchar(128);uniqueIndex;not null"`
	WorldRules      []string  `json:"world_rules" gorm:"type:jsonb;serializer:json"`
	Tone            string    `json:"tone" gorm:"type:varchar(255)"`
	TechnologyLevel string    `json:"technology_level" gorm:"type:varchar(255)"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (WorldSetting) TableName() string {
	return "world_settings"
}
