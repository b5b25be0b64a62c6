package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/nextmile/chatbot/internal/model"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	data := map[string]interface{}{
		"id":               conv.ID,
		"session_id":       conv.SessionID,
		"user_id":          conv.UserID,
		"user_query":       conv.UserQuery,
		"bot_response":     conv.BotResponse,
		"model_used":       conv.ModelUsed,
		"response_time_ms": conv.ResponseTimeMs,
		"retrieved_count":  conv.RetrievedCount,
		"success":          boolToInt(conv.Success),
		"error":            conv.Error,
		"ctime":            conv.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("conversations", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

var conversationFields = []string{
	"id", "session_id", "user_id", "user_query", "bot_response",
	"model_used", "response_time_ms", "retrieved_count", "success", "error", "ctime",
}

// ListBySession returns the most recent conversations first.
func (r *ConversationRepo) ListBySession(ctx context.Context, sessionID string, limit int) ([]model.Conversation, error) {
	if limit <= 0 {
		limit = 10
	}
	where := map[string]interface{}{
		"session_id": sessionID,
		"_orderby":   "ctime desc",
		"_limit":     []uint{0, uint(limit)},
	}
	sqlStr, args, err := builder.BuildSelect("conversations", where, conversationFields)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	conversations := make([]model.Conversation, 0)
	for rows.Next() {
		var c model.Conversation
		var success int
		if err := rows.Scan(&c.ID, &c.SessionID, &c.UserID, &c.UserQuery, &c.BotResponse,
			&c.ModelUsed, &c.ResponseTimeMs, &c.RetrievedCount, &success, &c.Error, &c.Ctime); err != nil {
			return nil, err
		}
		c.Success = success != 0
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (r *ConversationRepo) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	where := map[string]interface{}{"session_id": sessionID}
	sqlStr, args, err := builder.BuildSelect("conversations", where, []string{"count(*)"})
	if err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOlderThan removes conversations created before the cutoff,
// returning how many rows went away. Used by the retention job.
func (r *ConversationRepo) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE ctime < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
