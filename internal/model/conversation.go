package model

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the in-process conversation memory.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is one persisted query/response pair.
type Conversation struct {
	ID             string `json:"id"`
	SessionID      string `json:"session_id"`
	UserID         string `json:"user_id"`
	UserQuery      string `json:"user_query"`
	BotResponse    string `json:"bot_response"`
	ModelUsed      string `json:"model_used"`
	ResponseTimeMs int64  `json:"response_time_ms"`
	RetrievedCount int    `json:"retrieved_count"`
	Success        bool   `json:"success"`
	Error          string `json:"error,omitempty"`
	Ctime          int64  `json:"ctime"`
}
