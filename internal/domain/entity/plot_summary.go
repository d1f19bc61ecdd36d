package entity

import (
	"time"
)

// PlotSummary 章节剧情摘要实体
type PlotSummary struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID      string    `json:"novel_id" gorm:"type:varchar(128);index;not null"`
	ChapterID    string    `json:"chapter_id" gorm:"type:uuid;index;not null"`
	KeyEvents    []string  `json:"key_events" gorm:"type:jsonb;serializer:json"`
	Consequences []string  `json:"consequences" gorm:"type:jsonb;serializer:json"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (PlotSummary) TableName() string {
	return "plot_summaries"
}
