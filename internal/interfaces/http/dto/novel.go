package dto

// InitNovelRequest 初始化小说请求
type InitNovelRequest struct {
	NovelID string `json:"novel_id" binding:"required,max=64"`
	Topic   string `json:"topic" binding:"required"`
}

// NextChapterRequest 续写下一章请求
type NextChapterRequest struct {
	NovelID string `json:"novel_id" binding:"required,max=64"`
}

// NovelIDParam 路径中的小说 ID
type NovelIDParam struct {
	NovelID string `uri:"novel_id" binding:"required"`
}
