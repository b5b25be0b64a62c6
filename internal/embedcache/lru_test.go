package embedcache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) ModelName() string {
	return "count-model"
}

func TestWrapLRUCachesByTextAndTask(t *testing.T) {
	next := &countingEmbedder{}
	cached := WrapLRU(next, 16, time.Minute)

	ctx := context.Background()
	first, err := cached.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := cached.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if next.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", next.calls)
	}
	if len(first) != len(second) || first[0] != second[0] {
		t.Fatalf("cache returned a different vector: %v vs %v", first, second)
	}

	// Same text under another task type is a different key.
	if _, err := cached.Embed(ctx, "hello", "RETRIEVAL_DOCUMENT"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if next.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", next.calls)
	}
}

func TestWrapLRUResultIsolated(t *testing.T) {
	cached := WrapLRU(&countingEmbedder{}, 16, time.Minute)
	ctx := context.Background()

	vec, err := cached.Embed(ctx, "hello", "q")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	vec[0] = -999
	again, err := cached.Embed(ctx, "hello", "q")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if again[0] == -999 {
		t.Fatal("caller mutation leaked into the cache")
	}
}

func TestWrapLRUErrorNotCached(t *testing.T) {
	next := &countingEmbedder{err: fmt.Errorf("embed backend down")}
	cached := WrapLRU(next, 16, time.Minute)
	ctx := context.Background()

	if _, err := cached.Embed(ctx, "hello", "q"); err == nil {
		t.Fatal("expected an error")
	}
	next.err = nil
	if _, err := cached.Embed(ctx, "hello", "q"); err != nil {
		t.Fatalf("embed after recovery: %v", err)
	}
	if next.calls != 2 {
		t.Fatalf("failed call must not be cached, got %d calls", next.calls)
	}
}

func TestWrapLRUDisabled(t *testing.T) {
	next := &countingEmbedder{}
	if got := WrapLRU(next, 0, time.Minute); got != next {
		t.Fatal("zero size must return the embedder unchanged")
	}
	if got := WrapLRU(next, 16, 0); got != next {
		t.Fatal("zero ttl must return the embedder unchanged")
	}
	if got := WrapLRU(nil, 16, time.Minute); got != nil {
		t.Fatal("nil embedder must stay nil")
	}
}
