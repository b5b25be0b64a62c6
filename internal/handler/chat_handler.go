package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nextmile/chatbot/internal/pkg/errcode"
	"github.com/nextmile/chatbot/internal/pkg/response"
	"github.com/nextmile/chatbot/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Text       string `json:"text" binding:"required"`
	SessionID  string `json:"session_id"`
	UserID     string `json:"user_id"`
	Stream     bool   `json:"stream"`
	UseHistory *bool  `json:"use_history"`
}

type chatResponse struct {
	Reply          string `json:"reply"`
	SessionID      string `json:"session_id"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	RetrievedCount int    `json:"retrieved_count"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "text is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	in := service.QueryInput{
		SessionID:  req.SessionID,
		UserID:     req.UserID,
		Question:   req.Text,
		UseHistory: req.UseHistory == nil || *req.UseHistory,
	}
	if req.Stream {
		h.streamChat(c, in)
		return
	}

	// A failed generation is still a well-formed reply, not a
	// transport error.
	result := h.chat.Query(c.Request.Context(), in)
	response.Success(c, chatResponse{
		Reply:          result.Answer,
		SessionID:      req.SessionID,
		ResponseTimeMs: result.Elapsed.Milliseconds(),
		RetrievedCount: result.RetrievedCount(),
		Success:        result.Success,
		Error:          result.Error,
	})
}

func (h *ChatHandler) streamChat(c *gin.Context, in service.QueryInput) {
	ch, err := h.chat.QueryStream(c.Request.Context(), in)
	if err != nil {
		response.Error(c, errcode.ErrQueryFailed, err.Error())
		return
	}
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		chunk, ok := <-ch
		if !ok {
			c.SSEvent("done", gin.H{"session_id": in.SessionID})
			return false
		}
		if chunk.Err != nil {
			c.SSEvent("error", gin.H{"error": chunk.Err.Error()})
			return false
		}
		c.SSEvent("message", gin.H{"content": chunk.Content})
		return true
	})
}
