package entity

import (
	"time"
)

// Character 角色设定实体
type Character struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID     string    `json:"novel_id" gorm:"type:varchar(128);index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(128);not null"`
	Role        string    `json:"role" gorm:"type:varchar(128)"`
	Personality string    `json:"personality" gorm:"type:text"`
	Motivation  string    `json:"motivation" gorm:"type:text"`
	Flaws       string    `json:"flaws" gorm:"type:text"`
	GrowthArc   string    `json:"growth_arc" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Character) TableName() string {
	return "characters"
}
