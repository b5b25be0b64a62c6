package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextmile/chatbot/internal/repo"
)

// RetentionJob prunes persisted conversations older than the retention
// window.
type RetentionJob struct {
	conversations *repo.ConversationRepo
	retentionDays int
}

func NewRetentionJob(conversations *repo.ConversationRepo, retentionDays int) *RetentionJob {
	return &RetentionJob{conversations: conversations, retentionDays: retentionDays}
}

func (j *RetentionJob) Name() string {
	return "conversation_retention"
}

func (j *RetentionJob) Run(ctx context.Context) error {
	if j.conversations == nil || j.retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -j.retentionDays).UnixMilli()
	removed, err := j.conversations.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("pruned old conversations", zap.Int64("removed", removed))
	}
	return nil
}
