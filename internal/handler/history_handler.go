package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nextmile/chatbot/internal/memory"
	"github.com/nextmile/chatbot/internal/pkg/errcode"
	"github.com/nextmile/chatbot/internal/pkg/response"
	"github.com/nextmile/chatbot/internal/repo"
)

type HistoryHandler struct {
	conversations *repo.ConversationRepo
	sessions      *memory.Sessions
}

func NewHistoryHandler(conversations *repo.ConversationRepo, sessions *memory.Sessions) *HistoryHandler {
	return &HistoryHandler{conversations: conversations, sessions: sessions}
}

func (h *HistoryHandler) Get(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		response.Error(c, errcode.ErrInvalid, "session_id is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	history, err := h.conversations.ListBySession(c.Request.Context(), sessionID, limit)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"session_id": sessionID,
		"history":    history,
		"count":      len(history),
	})
}

// Clear drops the in-process memory for a session; the persisted log
// stays in the store.
func (h *HistoryHandler) Clear(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		response.Error(c, errcode.ErrInvalid, "session_id is required")
		return
	}
	h.sessions.Get(sessionID).Clear()
	h.sessions.Drop(sessionID)
	response.Success(c, gin.H{"session_id": sessionID, "cleared": true})
}
