package retrieval

import (
	"fmt"
	"sync/atomic"
)

// Config is an immutable snapshot of the retrieval tuning parameters.
// Runtime updates go through Holder and produce a new snapshot; nothing
// mutates a Config in place.
type Config struct {
	TopK              int     `json:"top_k"`
	KeywordWeight     float64 `json:"keyword_weight"`
	ExactMatchWeight  float64 `json:"exact_match_weight"`
	LengthBonusWeight float64 `json:"length_bonus_weight"`
	MinScoreThreshold float64 `json:"min_score_threshold"`

	// HistoryTurnPairs is the rolling window of conversation pairs
	// surfaced to the prompt builder. HistoryContextLimit caps the
	// context records when history is injected alongside them.
	HistoryTurnPairs    int `json:"history_turn_pairs"`
	HistoryContextLimit int `json:"history_context_limit"`
}

func DefaultConfig() Config {
	return Config{
		TopK:                5,
		KeywordWeight:       0.6,
		ExactMatchWeight:    0.3,
		LengthBonusWeight:   0.1,
		MinScoreThreshold:   0.1,
		HistoryTurnPairs:    4,
		HistoryContextLimit: 3,
	}
}

func (c Config) Validate() error {
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be >= 1, got %d", c.TopK)
	}
	if c.KeywordWeight < 0 || c.ExactMatchWeight < 0 || c.LengthBonusWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.HistoryTurnPairs < 0 || c.HistoryContextLimit < 0 {
		return fmt.Errorf("history limits must be non-negative")
	}
	return nil
}

// MaxScore is the upper bound the scorer can produce under this config.
func (c Config) MaxScore() float64 {
	return c.KeywordWeight + c.ExactMatchWeight + c.LengthBonusWeight
}

// Patch is a partial config update; nil fields keep the current value.
type Patch struct {
	TopK                *int     `json:"top_k"`
	KeywordWeight       *float64 `json:"keyword_weight"`
	ExactMatchWeight    *float64 `json:"exact_match_weight"`
	LengthBonusWeight   *float64 `json:"length_bonus_weight"`
	MinScoreThreshold   *float64 `json:"min_score_threshold"`
	HistoryTurnPairs    *int     `json:"history_turn_pairs"`
	HistoryContextLimit *int     `json:"history_context_limit"`
}

// Holder publishes the current Config snapshot to concurrent readers.
type Holder struct {
	current atomic.Pointer[Config]
}

func NewHolder(cfg Config) (*Holder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h := &Holder{}
	h.current.Store(&cfg)
	return h, nil
}

func (h *Holder) Load() Config {
	return *h.current.Load()
}

// Apply builds a new snapshot from the patch, validates it and swaps it
// in. The previous snapshot stays visible to in-flight queries.
func (h *Holder) Apply(p Patch) (Config, error) {
	next := h.Load()
	if p.TopK != nil {
		next.TopK = *p.TopK
	}
	if p.KeywordWeight != nil {
		next.KeywordWeight = *p.KeywordWeight
	}
	if p.ExactMatchWeight != nil {
		next.ExactMatchWeight = *p.ExactMatchWeight
	}
	if p.LengthBonusWeight != nil {
		next.LengthBonusWeight = *p.LengthBonusWeight
	}
	if p.MinScoreThreshold != nil {
		next.MinScoreThreshold = *p.MinScoreThreshold
	}
	if p.HistoryTurnPairs != nil {
		next.HistoryTurnPairs = *p.HistoryTurnPairs
	}
	if p.HistoryContextLimit != nil {
		next.HistoryContextLimit = *p.HistoryContextLimit
	}
	if err := next.Validate(); err != nil {
		return Config{}, err
	}
	h.current.Store(&next)
	return next, nil
}
