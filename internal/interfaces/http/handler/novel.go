package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"z-novel-agent-api/internal/application/novel"
	"z-novel-agent-api/internal/interfaces/http/dto"
)

// NovelHandler 小说生成处理器
type NovelHandler struct {
	svc *novel.Service
}

// NewNovelHandler 创建小说生成处理器
func NewNovelHandler(svc *novel.Service) *NovelHandler {
	return &NovelHandler{svc: svc}
}

// Init 初始化小说（非流式）：执行完整流水线后一次性返回首章。
// @Summary 初始化小说
// @Tags Novel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InitNovelRequest true "初始化参数"
// @Success 200 {object} dto.Response[novel.InitResult]
// @Router /v1/novel/init [post]
func (h *NovelHandler) Init(c *gin.Context) {
	var req dto.InitNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, already, err := h.svc.InitNovel(c.Request.Context(), currentUserID(c), req.NovelID, req.Topic)
	if err != nil {
		respondError(c, err)
		return
	}
	if already {
		dto.Success(c, map[string]any{
			"novel_id":            req.NovelID,
			"already_initialized": true,
		})
		return
	}
	dto.Success(c, result)
}

// InitStream 初始化小说（流式）：NDJSON 逐行推送进度、标题与正文增量。
// @Summary 初始化小说（流式）
// @Tags Novel
// @Accept json
// @Produce application/x-ndjson
// @Security BearerAuth
// @Param request body dto.InitNovelRequest true "初始化参数"
// @Success 200 {string} string "NDJSON 事件流"
// @Router /v1/novel/init_stream [post]
func (h *NovelHandler) InitStream(c *gin.Context) {
	var req dto.InitNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	emit, wrote := ndjsonEmitter(c)
	err := h.svc.InitNovelStream(c.Request.Context(), currentUserID(c), req.NovelID, req.Topic, emit)
	if err != nil && !*wrote {
		// 前置校验失败，流尚未开始，按普通错误响应
		respondError(c, err)
	}
}

// NextChapter 续写下一章（非流式）。
// @Summary 续写下一章
// @Tags Novel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.NextChapterRequest true "续写参数"
// @Success 200 {object} dto.Response[novel.ChapterResult]
// @Router /v1/novel/next_chapter [post]
func (h *NovelHandler) NextChapter(c *gin.Context) {
	var req dto.NextChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.NextChapter(c.Request.Context(), currentUserID(c), req.NovelID)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, result)
}

// NextChapterStream 续写下一章（流式）。
// @Summary 续写下一章（流式）
// @Tags Novel
// @Accept json
// @Produce application/x-ndjson
// @Security BearerAuth
// @Param request body dto.NextChapterRequest true "续写参数"
// @Success 200 {string} string "NDJSON 事件流"
// @Router /v1/novel/next_chapter_stream [post]
func (h *NovelHandler) NextChapterStream(c *gin.Context) {
	var req dto.NextChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	emit, wrote := ndjsonEmitter(c)
	err := h.svc.NextChapterStream(c.Request.Context(), currentUserID(c), req.NovelID, emit)
	if err != nil && !*wrote {
		respondError(c, err)
	}
}

// Status 查询小说当前进度。
// @Summary 查询小说进度
// @Tags Novel
// @Produce json
// @Security BearerAuth
// @Param novel_id path string true "小说 ID"
// @Success 200 {object} dto.Response[novel.StatusResult]
// @Router /v1/novel/status/{novel_id} [get]
func (h *NovelHandler) Status(c *gin.Context) {
	var param dto.NovelIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		dto.BadRequest(c, "invalid novel_id")
		return
	}

	result, err := h.svc.Status(c.Request.Context(), currentUserID(c), param.NovelID)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, result)
}

// List 列出当前用户的全部小说。
// @Summary 小说列表
// @Tags Novel
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.Response[[]novel.NovelSummary]
// @Router /v1/novel/list [get]
func (h *NovelHandler) List(c *gin.Context) {
	summaries, err := h.svc.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Success(c, summaries)
}

// Export 导出小说为纯文本附件。
// @Summary 导出小说
// @Tags Novel
// @Produce plain
// @Security BearerAuth
// @Param novel_id path string true "小说 ID"
// @Success 200 {string} string "小说全文"
// @Router /v1/novel/export/{novel_id} [get]
func (h *NovelHandler) Export(c *gin.Context) {
	var param dto.NovelIDParam
	if err := c.ShouldBindUri(&param); err != nil {
		dto.BadRequest(c, "invalid novel_id")
		return
	}

	filename, content, err := h.svc.Export(c.Request.Context(), currentUserID(c), param.NovelID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// ndjsonEmitter 返回按行写出 NDJSON 事件的回调。
// 首次写入时才设置响应头，之前的失败仍可走普通 JSON 错误响应。
func ndjsonEmitter(c *gin.Context) (novel.EmitFunc, *bool) {
	wrote := new(bool)
	emit := func(ev novel.Event) error {
		if !*wrote {
			c.Header("Content-Type", "application/x-ndjson")
			c.Header("Cache-Control", "no-cache")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
			*wrote = true
		}
		line, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("marshal stream event: %w", err)
		}
		if _, err := c.Writer.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write stream event: %w", err)
		}
		c.Writer.Flush()
		return nil
	}
	return emit, wrote
}
