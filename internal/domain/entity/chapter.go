package entity

import (
	"time"
)

// 章节生成方式
const (
	GenerationModeInit         = "init"
	GenerationModeContinuation = "continuation"
)

// RewriteMeta 章节重写元数据，记录被评审驳回的初稿与原因
type RewriteMeta struct {
	OriginalTitle   string   `json:"original_title,omitempty"`
	OriginalContent string   `json:"original_content,omitempty"`
	Reasons         []string `json:"reasons,omitempty"`
	Applied         bool     `json:"applied"`
}

// Chapter 章节实体
type Chapter struct {
	ID            string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID       string       `json:"novel_id" gorm:"type:varchar(128);index:idx_chapters_novel_number;not null"`
	ChapterNumber int          `json:"chapter_number" gorm:"index:idx_chapters_novel_number;not null"`
	Title         string       `json:"title" gorm:"type:varchar(255)"`
	Content       string       `json:"content" gorm:"type:text"`
	WordCount     int          `json:"word_count" gorm:"default:0"`
	RewriteMeta   *RewriteMeta `json:"rewrite_meta,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt     time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Chapter) TableName() string {
	return "chapters"
}

// NewChapter 创建新章节
func NewChapter(novelID string, chapterNumber int, title, content string) *Chapter {
	now := time.Now()
	return &Chapter{
		NovelID:       novelID,
		ChapterNumber: chapterNumber,
		Title:         title,
		Content:       content,
		WordCount:     len([]rune(content)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// WasRewritten 检查章节是否经历过评审重写
func (c *Chapter) WasRewritten() bool {
	return c.RewriteMeta != nil && c.RewriteMeta.Applied
}
