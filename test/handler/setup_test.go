package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xxxsen/common/webapi"

	"github.com/nextmile/chatbot/internal/ai"
	"github.com/nextmile/chatbot/internal/corpus"
	"github.com/nextmile/chatbot/internal/handler"
	"github.com/nextmile/chatbot/internal/memory"
	"github.com/nextmile/chatbot/internal/middleware"
	"github.com/nextmile/chatbot/internal/repo"
	"github.com/nextmile/chatbot/internal/retrieval"
	"github.com/nextmile/chatbot/internal/service"
	"github.com/nextmile/chatbot/test/testutil"
)

type scriptedGenerator struct {
	answer string
	err    error
}

func (g *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.answer, g.err
}

func (g *scriptedGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan ai.Chunk, error) {
	if g.err != nil {
		return nil, g.err
	}
	ch := make(chan ai.Chunk, 1)
	ch <- ai.Chunk{Content: g.answer}
	close(ch)
	return ch, nil
}

func (g *scriptedGenerator) ModelName() string {
	return "scripted-model"
}

func jsonBody(t *testing.T, body interface{}) io.Reader {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func setupRouter(t *testing.T, gen ai.IGenerator) (http.Handler, *repo.ConversationRepo, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, cleanup := testutil.OpenTestDB(t)
	conversations := repo.NewConversationRepo(db)

	index, err := corpus.NewIndex(corpus.SampleRecords())
	require.NoError(t, err)
	holder, err := retrieval.NewHolder(retrieval.DefaultConfig())
	require.NoError(t, err)

	sessions := memory.NewSessions()
	chatService := service.NewChatService(retrieval.NewLexical(index, holder), holder, gen, sessions, conversations)
	systemService := service.NewSystemService(index, nil, holder, nil, service.ModelInfo{
		Provider:  "openai",
		ModelName: "scripted-model",
	})

	deps := handler.RouterDeps{
		Chat:    handler.NewChatHandler(chatService),
		History: handler.NewHistoryHandler(conversations, sessions),
		System:  handler.NewSystemHandler(systemService, chatService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		"",
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
		),
	)
	require.NoError(t, err)

	return engine, conversations, cleanup
}
