// Package router 提供 HTTP 路由配置
package router

import (
	"press-council-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	configHandler *handler.ConfigHandler,
	conversationHandler *handler.ConversationHandler,
	councilHandler *handler.CouncilHandler,
) {
	// 配置目录
	cfg := v1.Group("/config")
	{
		cfg.GET("", configHandler.GetConfig)
		cfg.GET("/blocks", configHandler.GetModelBlocks)
		cfg.GET("/personas", configHandler.GetPersonas)
		cfg.GET("/modes", configHandler.GetModes)
		cfg.GET("/criticism-levels", configHandler.GetCriticismLevels)
		cfg.POST("/estimate", configHandler.Estimate)
	}

	// 会话管理
	conversations := v1.Group("/conversations")
	{
		conversations.GET("", conversationHandler.ListConversations)
		conversations.POST("", conversationHandler.CreateConversation)
		conversations.GET("/:cid", conversationHandler.GetConversation)
		conversations.PUT("/:cid/title", conversationHandler.UpdateConversationTitle)
		conversations.DELETE("/:cid", conversationHandler.DeleteConversation)

		// 评议会运行
		conversations.POST("/:cid/press-release", councilHandler.RunPressRelease)
		conversations.POST("/:cid/press-release/stream", councilHandler.StreamPressRelease) // SSE
	}
}
