package ai

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type GeneratorEntry struct {
	Name      string
	Generator IGenerator
}

// NewGroupGenerator chains generators as fallbacks: each is tried in
// order until one answers.
func NewGroupGenerator(items []GeneratorEntry) IGenerator {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return items[0].Generator
	}
	return &groupGenerator{items: items}
}

type groupGenerator struct {
	items []GeneratorEntry
}

func (g *groupGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Generator == nil {
			continue
		}
		res, err := item.Generator.Generate(ctx, prompt)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("generator failed, trying next",
			zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return "", fmt.Errorf("generator not configured")
	}
	return "", lastErr
}

// GenerateStream falls back on stream setup errors only; once a stream
// is open its chunks flow through unchanged.
func (g *groupGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan Chunk, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Generator == nil {
			continue
		}
		ch, err := item.Generator.GenerateStream(ctx, prompt)
		if err == nil {
			return ch, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("stream generator failed, trying next",
			zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("generator not configured")
	}
	return nil, lastErr
}

func (g *groupGenerator) ModelName() string {
	for _, item := range g.items {
		if item.Generator != nil {
			return item.Generator.ModelName()
		}
	}
	return ""
}
