package service

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nextmile/chatbot/internal/ai"
	"github.com/nextmile/chatbot/internal/corpus"
	"github.com/nextmile/chatbot/internal/memory"
	"github.com/nextmile/chatbot/internal/model"
	"github.com/nextmile/chatbot/internal/repo"
	"github.com/nextmile/chatbot/internal/retrieval"
)

type fakeGenerator struct {
	answer  string
	err     error
	chunks  []string
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func (f *fakeGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan ai.Chunk, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan ai.Chunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- ai.Chunk{Content: c}
	}
	close(ch)
	return ch, nil
}

func (f *fakeGenerator) ModelName() string {
	return "fake-model"
}

type panicRetriever struct{}

func (panicRetriever) Retrieve(ctx context.Context, query string) ([]model.ScoredMatch, error) {
	panic("broken retriever")
}

func (panicRetriever) RetrieveN(ctx context.Context, query string, topK int) ([]model.ScoredMatch, error) {
	panic("broken retriever")
}

func newTestChatService(t *testing.T, gen ai.IGenerator) *ChatService {
	t.Helper()
	index, err := corpus.NewIndex(corpus.SampleRecords())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	holder, err := retrieval.NewHolder(retrieval.DefaultConfig())
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	return NewChatService(retrieval.NewLexical(index, holder), holder, gen, memory.NewSessions(), nil)
}

func TestQuerySuccess(t *testing.T) {
	gen := &fakeGenerator{answer: "I worked on fine-tuning at Baidu."}
	svc := newTestChatService(t, gen)

	result := svc.Query(context.Background(), QueryInput{
		SessionID:  "s1",
		Question:   "Tell me about your Baidu AI engineer work",
		UseHistory: true,
	})
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.Answer != gen.answer {
		t.Fatalf("unexpected answer: %q", result.Answer)
	}
	if result.RetrievedCount() == 0 {
		t.Fatal("expected retrieved matches")
	}
	if result.Elapsed <= 0 {
		t.Fatal("elapsed not measured")
	}

	log := svc.Sessions().Get("s1")
	if log.Len() != 2 {
		t.Fatalf("expected 2 memory turns, got %d", log.Len())
	}
	turns := log.All()
	if turns[0].Role != model.RoleUser || turns[1].Role != model.RoleAssistant {
		t.Fatalf("wrong turn roles: %+v", turns)
	}
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Tell me about your Baidu AI engineer work") {
		t.Fatalf("prompt missing the question: %v", gen.prompts)
	}
}

func TestQueryGenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("backend down")}
	svc := newTestChatService(t, gen)

	result := svc.Query(context.Background(), QueryInput{
		SessionID:  "s1",
		Question:   "Tell me about your Baidu AI engineer work",
		UseHistory: true,
	})
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "backend down") {
		t.Fatalf("error not preserved: %q", result.Error)
	}
	if !strings.Contains(result.Answer, "Sorry") {
		t.Fatalf("expected an apologetic answer, got %q", result.Answer)
	}
	// Retrieval already succeeded; the result keeps what it found.
	if result.RetrievedCount() == 0 {
		t.Fatal("matches dropped on generation failure")
	}
	if svc.Sessions().Get("s1").Len() != 0 {
		t.Fatal("failed queries must not enter conversation memory")
	}
}

func TestQueryRetrieverPanic(t *testing.T) {
	gen := &fakeGenerator{answer: "unused"}
	holder, err := retrieval.NewHolder(retrieval.DefaultConfig())
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	svc := NewChatService(panicRetriever{}, holder, gen, memory.NewSessions(), nil)

	result := svc.Query(context.Background(), QueryInput{SessionID: "s1", Question: "anything"})
	if result.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Error, "broken retriever") {
		t.Fatalf("panic not captured: %q", result.Error)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("generation must not run after a retrieval failure")
	}
}

func TestQueryNoHistorySkipsMemory(t *testing.T) {
	gen := &fakeGenerator{answer: "answer"}
	svc := newTestChatService(t, gen)

	svc.Query(context.Background(), QueryInput{SessionID: "s1", Question: "question one"})
	if svc.Sessions().Get("s1").Len() != 0 {
		t.Fatal("history-free queries must not touch memory")
	}
	if !strings.Contains(gen.prompts[0], "question one") {
		t.Fatalf("prompt missing the question: %v", gen.prompts)
	}
	if strings.Contains(gen.prompts[0], "Previous Conversation:") {
		t.Fatal("history section rendered without history")
	}
}

func TestQueryAnswerCache(t *testing.T) {
	gen := &fakeGenerator{answer: "cached answer"}
	svc := newTestChatService(t, gen)

	in := QueryInput{SessionID: "s1", Question: "same question"}
	first := svc.Query(context.Background(), in)
	second := svc.Query(context.Background(), in)
	if !first.Success || !second.Success {
		t.Fatal("expected both queries to succeed")
	}
	if second.Answer != first.Answer {
		t.Fatalf("cache changed the answer: %q vs %q", first.Answer, second.Answer)
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected a single generation call, got %d", len(gen.prompts))
	}
}

func TestQueryCacheHitStillPersisted(t *testing.T) {
	db, err := repo.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()
	if err := repo.ApplyMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	conversations := repo.NewConversationRepo(db)

	index, err := corpus.NewIndex(corpus.SampleRecords())
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	holder, err := retrieval.NewHolder(retrieval.DefaultConfig())
	if err != nil {
		t.Fatalf("holder: %v", err)
	}
	gen := &fakeGenerator{answer: "an answer"}
	svc := NewChatService(retrieval.NewLexical(index, holder), holder, gen, memory.NewSessions(), conversations)

	in := QueryInput{SessionID: "s1", Question: "same question"}
	for i := 0; i < 2; i++ {
		if result := svc.Query(context.Background(), in); !result.Success {
			t.Fatalf("query %d failed: %q", i, result.Error)
		}
	}
	if len(gen.prompts) != 1 {
		t.Fatalf("expected the second query to hit the cache, got %d generation calls", len(gen.prompts))
	}

	// Persistence runs off the request path, so wait for both rows.
	deadline := time.Now().Add(2 * time.Second)
	var count int64
	for time.Now().Before(deadline) {
		count, err = conversations.CountBySession(context.Background(), "s1")
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if count == 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected 2 persisted conversations for 2 answered queries, got %d", count)
}

func TestQueryHistoryFlowsIntoPrompt(t *testing.T) {
	gen := &fakeGenerator{answer: "first answer"}
	svc := newTestChatService(t, gen)

	in := QueryInput{SessionID: "s1", Question: "Tell me about Baidu", UseHistory: true}
	svc.Query(context.Background(), in)

	gen.answer = "second answer"
	in.Question = "And what about Apple?"
	svc.Query(context.Background(), in)

	if len(gen.prompts) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(gen.prompts))
	}
	if !strings.Contains(gen.prompts[1], "Previous Conversation:") {
		t.Fatalf("second prompt missing history:\n%s", gen.prompts[1])
	}
	if !strings.Contains(gen.prompts[1], "first answer") {
		t.Fatalf("second prompt missing the earlier answer:\n%s", gen.prompts[1])
	}
}

func TestQueryStream(t *testing.T) {
	gen := &fakeGenerator{chunks: []string{"I ", "worked ", "at Baidu."}}
	svc := newTestChatService(t, gen)

	ch, err := svc.QueryStream(context.Background(), QueryInput{
		SessionID:  "s1",
		Question:   "Tell me about Baidu",
		UseHistory: true,
	})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	var full strings.Builder
	for chunk := range ch {
		if chunk.Err != nil {
			t.Fatalf("unexpected chunk error: %v", chunk.Err)
		}
		full.WriteString(chunk.Content)
	}
	if full.String() != "I worked at Baidu." {
		t.Fatalf("unexpected streamed answer: %q", full.String())
	}
}

// floodGenerator streams far more chunks than the pipeline buffers,
// forcing backpressure on an abandoned consumer.
type floodGenerator struct {
	chunks int
}

func (f *floodGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (f *floodGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan ai.Chunk, error) {
	ch := make(chan ai.Chunk, 1)
	go func() {
		defer close(ch)
		for i := 0; i < f.chunks; i++ {
			select {
			case ch <- ai.Chunk{Content: "x"}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (f *floodGenerator) ModelName() string {
	return "flood-model"
}

func TestQueryStreamConsumerGone(t *testing.T) {
	svc := newTestChatService(t, &floodGenerator{chunks: 500})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	before := runtime.NumGoroutine()

	ch, err := svc.QueryStream(ctx, QueryInput{SessionID: "s1", Question: "Tell me about Baidu"})
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	// Take one chunk, then walk away like a disconnected client.
	<-ch
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && runtime.NumGoroutine() > before {
		time.Sleep(10 * time.Millisecond)
	}
	if got := runtime.NumGoroutine(); got > before {
		t.Fatalf("streaming goroutines still running after cancel: %d before, %d after", before, got)
	}
}

func TestQueryStreamSetupFailure(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("backend down")}
	svc := newTestChatService(t, gen)

	if _, err := svc.QueryStream(context.Background(), QueryInput{SessionID: "s1", Question: "q"}); err == nil {
		t.Fatal("expected a setup error")
	}
}
