package entity

import (
	"time"
)

// ChapterReview 章节评审结果实体
type ChapterReview struct {
	ID                    string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID               string    `json:"novel_id" gorm:"type:varchar(128);index;not null"`
	ChapterID             string    `json:"chapter_id" gorm:"type:uuid;index;not null"`
	OverallScore          float64   `json:"overall_score"`
	WorldConsistencyScore float64   `json:"world_consistency_score"`
	OffTopic              bool      `json:"off_topic"`
	Issues                []string  `json:"issues" gorm:"type:jsonb;serializer:json"`
	Summary               string    `json:"summary" gorm:"type:text"`
	CreatedAt             time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (ChapterReview) TableName() string {
	return "chapter_reviews"
}
