package entity

import (
	"time"
)

// AgentLog 智能体执行日志实体，保存各阶段输入摘要与截断后的原始输出
type AgentLog struct {
	ID            string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NovelID       string    `json:"novel_id" gorm:"type:varchar(128);index;not null"`
	AgentName     string    `json:"agent_name" gorm:"type:varchar(128);not null"`
	InputSummary  string    `json:"input_summary" gorm:"type:text"`
	OutputSummary string    `json:"output_summary" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (AgentLog) TableName() string {
	return "agent_logs"
}
