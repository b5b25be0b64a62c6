package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Chat    *ChatHandler
	History *HistoryHandler
	System  *SystemHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.System.Health)

	api.POST("/chat", deps.Chat.Chat)

	api.GET("/history/:session_id", deps.History.Get)
	api.DELETE("/history/:session_id", deps.History.Clear)

	api.GET("/system/info", deps.System.Info)
	api.POST("/system/reload", deps.System.Reload)
	api.GET("/system/config", deps.System.GetConfig)
	api.PUT("/system/config", deps.System.UpdateConfig)
}
