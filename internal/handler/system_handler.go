package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/nextmile/chatbot/internal/pkg/errcode"
	"github.com/nextmile/chatbot/internal/pkg/response"
	"github.com/nextmile/chatbot/internal/retrieval"
	"github.com/nextmile/chatbot/internal/service"
)

type SystemHandler struct {
	system *service.SystemService
	chat   *service.ChatService
}

func NewSystemHandler(system *service.SystemService, chat *service.ChatService) *SystemHandler {
	return &SystemHandler{system: system, chat: chat}
}

func (h *SystemHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "healthy",
		"records": h.system.RecordCount(),
		"model":   h.chat.ModelName(),
	})
}

func (h *SystemHandler) Info(c *gin.Context) {
	response.Success(c, gin.H{
		"corpus":    h.system.Summary(),
		"retrieval": h.system.RetrievalConfig(),
		"model":     h.system.ModelInfo(),
	})
}

type reloadRequest struct {
	Path string `json:"path"`
}

func (h *SystemHandler) Reload(c *gin.Context) {
	var req reloadRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if err := h.system.Reload(c.Request.Context(), req.Path); err != nil {
		response.Error(c, errcode.ErrCorpusReloadFailed, err.Error())
		return
	}
	response.Success(c, gin.H{
		"records": h.system.RecordCount(),
		"summary": h.system.Summary(),
	})
}

func (h *SystemHandler) GetConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"retrieval": h.system.RetrievalConfig(),
		"model":     h.system.ModelInfo(),
	})
}

func (h *SystemHandler) UpdateConfig(c *gin.Context) {
	var patch retrieval.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	cfg, err := h.system.UpdateRetrieval(c.Request.Context(), patch)
	if err != nil {
		response.Error(c, errcode.ErrInvalid, err.Error())
		return
	}
	response.Success(c, gin.H{"retrieval": cfg})
}
