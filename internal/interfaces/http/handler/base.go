package handler

import (
	"github.com/gin-gonic/gin"

	"z-novel-agent-api/internal/interfaces/http/dto"
	apperrors "z-novel-agent-api/pkg/errors"
	"z-novel-agent-api/pkg/logger"
)

// currentUserID 从认证中间件注入的上下文中取用户 ID
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

// respondError 把应用错误映射为统一的 HTTP 错误响应
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= 500 {
		logger.FromContext(c.Request.Context()).Error("request failed",
			"path", c.Request.URL.Path,
			"code", string(appErr.Code),
			"error", err,
		)
	}

	var detail *dto.ErrorDetail
	if appErr.Detail != "" {
		detail = &dto.ErrorDetail{Details: appErr.Detail}
	}
	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, detail)
}
