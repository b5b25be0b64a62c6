package service

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/nextmile/chatbot/internal/corpus"
	"github.com/nextmile/chatbot/internal/model"
	"github.com/nextmile/chatbot/internal/retrieval"
)

// Skills are listed in a trailing "Technologies: a, b, c" clause of the
// narrative.
var technologiesRe = regexp.MustCompile(`Technologies:\s*([^.]+)`)

const maxKeySkills = 15

// ModelInfo is the generation configuration exposed on the system
// surface. The API key never leaves the process.
type ModelInfo struct {
	Provider    string  `json:"provider"`
	ModelName   string  `json:"model_name"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// SystemService owns the corpus lifecycle (summary, reload) and the
// runtime-tunable configuration.
type SystemService struct {
	index  *corpus.Index
	cfg    *retrieval.Holder
	vector *retrieval.Vector
	info   ModelInfo

	mu     sync.Mutex
	loader *corpus.Loader
}

func NewSystemService(index *corpus.Index, loader *corpus.Loader, cfg *retrieval.Holder, vector *retrieval.Vector, info ModelInfo) *SystemService {
	return &SystemService{index: index, loader: loader, cfg: cfg, vector: vector, info: info}
}

func (s *SystemService) RecordCount() int {
	return s.index.Len()
}

func (s *SystemService) Summary() model.CorpusSummary {
	records := s.index.Records()
	summary := model.CorpusSummary{TotalRecords: len(records)}

	seen := make(map[string]struct{})
	skills := make(map[string]struct{})
	for _, rec := range records {
		switch rec.Kind {
		case model.KindWork:
			summary.WorkCount++
		case model.KindProject:
			summary.ProjectCount++
		}
		if _, ok := seen[rec.Organization]; !ok && rec.Organization != "" {
			seen[rec.Organization] = struct{}{}
			summary.Organizations = append(summary.Organizations, rec.Organization)
		}
		for _, skill := range extractSkills(rec.Narrative) {
			skills[skill] = struct{}{}
		}
	}
	summary.KeySkills = make([]string, 0, len(skills))
	for skill := range skills {
		summary.KeySkills = append(summary.KeySkills, skill)
	}
	sort.Strings(summary.KeySkills)
	if len(summary.KeySkills) > maxKeySkills {
		summary.KeySkills = summary.KeySkills[:maxKeySkills]
	}
	return summary
}

func extractSkills(narrative string) []string {
	m := technologiesRe.FindStringSubmatch(narrative)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			skills = append(skills, p)
		}
	}
	return skills
}

// Reload refreshes the corpus from its source and swaps the index
// atomically; in-flight queries keep the snapshot they started with.
// A non-empty pathOverride switches the service to a new local
// spreadsheet. Any load or parse error leaves the old index in place.
func (s *SystemService) Reload(ctx context.Context, pathOverride string) error {
	s.mu.Lock()
	loader := s.loader
	if pathOverride != "" {
		source, err := corpus.NewSource("local", map[string]interface{}{"path": pathOverride})
		if err != nil {
			s.mu.Unlock()
			return err
		}
		loader = corpus.NewLoader(source)
		s.loader = loader
	}
	s.mu.Unlock()
	if loader == nil {
		return fmt.Errorf("no corpus source configured; pass a path to reload from")
	}

	records, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	if err := s.index.Replace(records); err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("corpus reloaded",
		zap.String("source", loader.Source()), zap.Int("records", len(records)))

	if s.vector != nil {
		if err := s.vector.Sync(ctx, s.index.Snapshot()); err != nil {
			return fmt.Errorf("sync embeddings after reload: %w", err)
		}
	}
	return nil
}

func (s *SystemService) RetrievalConfig() retrieval.Config {
	return s.cfg.Load()
}

func (s *SystemService) ModelInfo() ModelInfo {
	return s.info
}

// UpdateRetrieval applies a partial config update, returning the new
// snapshot.
func (s *SystemService) UpdateRetrieval(ctx context.Context, patch retrieval.Patch) (retrieval.Config, error) {
	cfg, err := s.cfg.Apply(patch)
	if err != nil {
		return retrieval.Config{}, err
	}
	logutil.GetLogger(ctx).Info("retrieval config updated",
		zap.Int("top_k", cfg.TopK),
		zap.Float64("keyword_weight", cfg.KeywordWeight),
		zap.Float64("exact_match_weight", cfg.ExactMatchWeight),
		zap.Float64("length_bonus_weight", cfg.LengthBonusWeight),
		zap.Float64("min_score_threshold", cfg.MinScoreThreshold))
	return cfg, nil
}
