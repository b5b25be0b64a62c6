package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextmile/chatbot/internal/ai"
	"github.com/nextmile/chatbot/internal/memory"
	"github.com/nextmile/chatbot/internal/model"
	appErr "github.com/nextmile/chatbot/internal/pkg/errors"
	"github.com/nextmile/chatbot/internal/prompt"
	"github.com/nextmile/chatbot/internal/repo"
	"github.com/nextmile/chatbot/internal/retrieval"
)

// queryStage tracks where a query is in its lifecycle, mostly for
// failure logs.
type queryStage int

const (
	stageStart queryStage = iota
	stageRetrieving
	stagePrompting
	stageGenerating
	stageDone
	stageFailed
)

func (s queryStage) String() string {
	switch s {
	case stageStart:
		return "start"
	case stageRetrieving:
		return "retrieving"
	case stagePrompting:
		return "prompting"
	case stageGenerating:
		return "generating"
	case stageDone:
		return "done"
	case stageFailed:
		return "failed"
	}
	return "unknown"
}

// QueryInput is one question entering the pipeline.
type QueryInput struct {
	SessionID  string
	UserID     string
	Question   string
	UseHistory bool
	TopK       int
}

// ChatService drives one query through retrieval, prompt assembly and
// generation. It never returns an error to its caller: a failed
// generation produces a QueryResult with Success=false and a readable
// Answer. Only the generation step is expected to fail in normal
// operation; retrieval errors indicate a config or programming problem
// and are captured the same way.
type ChatService struct {
	retriever     retrieval.Retriever
	cfg           *retrieval.Holder
	generator     ai.IGenerator
	sessions      *memory.Sessions
	conversations *repo.ConversationRepo
	answerCache   *expirable.LRU[string, string]
}

func NewChatService(
	retriever retrieval.Retriever,
	cfg *retrieval.Holder,
	generator ai.IGenerator,
	sessions *memory.Sessions,
	conversations *repo.ConversationRepo,
) *ChatService {
	return &ChatService{
		retriever:     retriever,
		cfg:           cfg,
		generator:     generator,
		sessions:      sessions,
		conversations: conversations,
		answerCache:   expirable.NewLRU[string, string](1024, nil, 30*time.Minute),
	}
}

func (s *ChatService) ModelName() string {
	if s.generator == nil {
		return ""
	}
	return s.generator.ModelName()
}

func (s *ChatService) Sessions() *memory.Sessions {
	return s.sessions
}

// Query runs the full pipeline for one question.
func (s *ChatService) Query(ctx context.Context, in QueryInput) *model.QueryResult {
	start := time.Now()
	stage := stageStart
	result := &model.QueryResult{Matches: []model.ScoredMatch{}}
	logger := logutil.GetLogger(ctx).With(zap.String("session_id", in.SessionID))

	fail := func(err error) *model.QueryResult {
		logger.Error("query failed", zap.Stringer("stage", stage), zap.Error(err))
		stage = stageFailed
		result.Success = false
		result.Error = err.Error()
		result.Answer = fmt.Sprintf("Sorry, I couldn't answer that right now: %s", err)
		result.Elapsed = time.Since(start)
		s.persist(in, result)
		return result
	}

	stage = stageRetrieving
	matches, err := s.retrieveSafely(ctx, in.Question, in.TopK)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", appErr.ErrRetrieval, err))
	}
	// Best-effort: a later generation failure still reports what
	// retrieval found.
	result.Matches = matches

	cacheKey := ""
	if !in.UseHistory {
		cacheKey = s.cacheKey(in.Question)
		if cached, ok := s.answerCache.Get(cacheKey); ok {
			logger.Debug("answer cache hit")
			stage = stageDone
			result.Answer = cached
			result.Success = true
			result.Elapsed = time.Since(start)
			// Cached answers are still conversations; the store sees
			// every answered query.
			s.persist(in, result)
			return result
		}
	}

	stage = stagePrompting
	promptText := s.buildPrompt(in, matches)

	stage = stageGenerating
	answer, err := s.generator.Generate(ctx, promptText)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", appErr.ErrGeneration, err))
	}

	stage = stageDone
	result.Answer = answer
	result.Success = true
	result.Elapsed = time.Since(start)
	logger.Info("query answered",
		zap.Stringer("stage", stage),
		zap.Int("retrieved", len(matches)),
		zap.Duration("elapsed", result.Elapsed))

	if in.UseHistory {
		log := s.sessions.Get(in.SessionID)
		log.Append(model.Turn{Role: model.RoleUser, Text: in.Question})
		log.Append(model.Turn{Role: model.RoleAssistant, Text: answer})
	} else if cacheKey != "" {
		s.answerCache.Add(cacheKey, answer)
	}
	s.persist(in, result)
	return result
}

// QueryStream runs the pipeline with a streaming generation call. The
// returned channel emits text fragments until end-of-stream; a chunk
// with a non-nil Err terminates it. Setup failures (retrieval, stream
// open) are returned as errors so the transport can report them.
func (s *ChatService) QueryStream(ctx context.Context, in QueryInput) (<-chan ai.Chunk, error) {
	start := time.Now()
	matches, err := s.retrieveSafely(ctx, in.Question, in.TopK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", appErr.ErrRetrieval, err)
	}
	promptText := s.buildPrompt(in, matches)

	src, err := s.generator.GenerateStream(ctx, promptText)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", appErr.ErrGeneration, err)
		s.persist(in, &model.QueryResult{
			Matches: matches,
			Elapsed: time.Since(start),
			Error:   wrapped.Error(),
		})
		return nil, wrapped
	}

	out := make(chan ai.Chunk, 100)
	go func() {
		defer close(out)
		var answer strings.Builder
		for chunk := range src {
			select {
			case out <- chunk:
			case <-ctx.Done():
				// Consumer is gone; stop draining the provider.
				s.persist(in, &model.QueryResult{
					Matches: matches,
					Elapsed: time.Since(start),
					Error:   ctx.Err().Error(),
				})
				return
			}
			if chunk.Err != nil {
				s.persist(in, &model.QueryResult{
					Matches: matches,
					Elapsed: time.Since(start),
					Error:   chunk.Err.Error(),
				})
				return
			}
			answer.WriteString(chunk.Content)
		}
		result := &model.QueryResult{
			Answer:  answer.String(),
			Matches: matches,
			Elapsed: time.Since(start),
			Success: true,
		}
		if in.UseHistory {
			log := s.sessions.Get(in.SessionID)
			log.Append(model.Turn{Role: model.RoleUser, Text: in.Question})
			log.Append(model.Turn{Role: model.RoleAssistant, Text: result.Answer})
		}
		s.persist(in, result)
	}()
	return out, nil
}

func (s *ChatService) buildPrompt(in QueryInput, matches []model.ScoredMatch) string {
	cfg := s.cfg.Load()
	opts := prompt.Options{
		MaxHistoryPairs:   cfg.HistoryTurnPairs,
		MaxContextRecords: cfg.HistoryContextLimit,
	}
	if in.UseHistory {
		opts.History = s.sessions.Get(in.SessionID).Recent(cfg.HistoryTurnPairs * 2)
	}
	return prompt.Build(in.Question, matches, opts)
}

// retrieveSafely converts a retriever panic into an error so a bad
// config can never take the process down mid-request.
func (s *ChatService) retrieveSafely(ctx context.Context, query string, topK int) (matches []model.ScoredMatch, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("retriever panic: %v", r)
		}
	}()
	return s.retriever.RetrieveN(ctx, query, topK)
}

func (s *ChatService) cacheKey(question string) string {
	cfg := s.cfg.Load()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%+v", question, cfg)))
	return hex.EncodeToString(sum[:])
}

// persist writes the conversation to the store without blocking the
// caller. Store failures are logged and never fail the query.
func (s *ChatService) persist(in QueryInput, result *model.QueryResult) {
	if s.conversations == nil {
		return
	}
	conv := &model.Conversation{
		ID:             uuid.NewString(),
		SessionID:      in.SessionID,
		UserID:         in.UserID,
		UserQuery:      in.Question,
		BotResponse:    result.Answer,
		ModelUsed:      s.ModelName(),
		ResponseTimeMs: result.Elapsed.Milliseconds(),
		RetrievedCount: len(result.Matches),
		Success:        result.Success,
		Error:          result.Error,
		Ctime:          time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.conversations.Create(ctx, conv); err != nil {
			logutil.GetLogger(ctx).Warn("conversation save failed",
				zap.String("session_id", conv.SessionID), zap.Error(err))
		}
	}()
}
