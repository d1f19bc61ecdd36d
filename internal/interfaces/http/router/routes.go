// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"

	"z-novel-agent-api/internal/interfaces/http/handler"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	authHandler *handler.AuthHandler,
	novelHandler *handler.NovelHandler,
) {
	// 认证管理
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	// 小说生成
	novel := v1.Group("/novel")
	{
		novel.POST("/init", novelHandler.Init)
		novel.POST("/init_stream", novelHandler.InitStream)
		novel.POST("/next_chapter", novelHandler.NextChapter)
		novel.POST("/next_chapter_stream", novelHandler.NextChapterStream)
		novel.GET("/status/:novel_id", novelHandler.Status)
		novel.GET("/list", novelHandler.List)
		novel.GET("/export/:novel_id", novelHandler.Export)
	}
}
