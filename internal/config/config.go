package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	DBPath      string           `json:"db_path"`
	CORSOrigins []string         `json:"cors_origins"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Corpus      CorpusConfig     `json:"corpus"`
	Model       ModelConfig      `json:"model"`
	Retrieval   RetrievalConfig  `json:"retrieval"`
	Vector      VectorConfig     `json:"vector"`
	Jobs        JobsConfig       `json:"jobs"`
}

// CorpusConfig selects where the corpus spreadsheet comes from. An
// empty type means the built-in sample records.
type CorpusConfig struct {
	Type string         `json:"type"`
	Path string         `json:"path"`
	S3   CorpusS3Config `json:"s3"`
}

type CorpusS3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Key       string `json:"key"`
}

type ModelConfig struct {
	Provider    string        `json:"provider"`
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	ModelName   string        `json:"model_name"`
	EmbedModel  string        `json:"embed_model"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Fallbacks   []ModelConfig `json:"fallbacks"`
}

type RetrievalConfig struct {
	Backend             string  `json:"backend"`
	TopK                int     `json:"top_k"`
	KeywordWeight       float64 `json:"keyword_weight"`
	ExactMatchWeight    float64 `json:"exact_match_weight"`
	LengthBonusWeight   float64 `json:"length_bonus_weight"`
	MinScoreThreshold   float64 `json:"min_score_threshold"`
	HistoryTurnPairs    int     `json:"history_turn_pairs"`
	HistoryContextLimit int     `json:"history_context_limit"`
}

// VectorConfig configures the optional pgvector retrieval backend.
type VectorConfig struct {
	DSN             string `json:"dsn"`
	Dimension       int    `json:"dimension"`
	CacheSize       int    `json:"cache_size"`
	CacheTTLMinutes int    `json:"cache_ttl_minutes"`
}

type JobsConfig struct {
	CorpusReloadSpec string `json:"corpus_reload_spec"`
	CleanupSpec      string `json:"cleanup_spec"`
	RetentionDays    int    `json:"retention_days"`
}

func Load(path string) (*Config, error) {
	// Secrets may live in a .env next to the binary instead of the
	// config file.
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	applyModelDefaults(&cfg.Model)
	applyRetrievalDefaults(&cfg.Retrieval)
	switch cfg.Corpus.Type {
	case "", "local", "s3":
	default:
		return nil, fmt.Errorf("corpus.type must be empty, local or s3")
	}
	if cfg.Corpus.Type == "local" && cfg.Corpus.Path == "" {
		return nil, fmt.Errorf("corpus.path is required for local corpus")
	}
	if cfg.Retrieval.Backend != "lexical" && cfg.Retrieval.Backend != "vector" {
		return nil, fmt.Errorf("retrieval.backend must be lexical or vector")
	}
	if cfg.Retrieval.Backend == "vector" {
		if cfg.Vector.DSN == "" {
			return nil, fmt.Errorf("vector.dsn is required for the vector backend")
		}
		if cfg.Vector.Dimension == 0 {
			return nil, fmt.Errorf("vector.dimension is required for the vector backend")
		}
		if cfg.Model.EmbedModel == "" {
			return nil, fmt.Errorf("model.embed_model is required for the vector backend")
		}
	}
	if cfg.Jobs.RetentionDays == 0 {
		cfg.Jobs.RetentionDays = 90
	}
	return &cfg, nil
}

func applyModelDefaults(m *ModelConfig) {
	if key := os.Getenv("MODEL_API_KEY"); key != "" {
		m.APIKey = key
		// Fallback entries without their own key share the
		// environment one, so a key living only in .env keeps the
		// whole chain usable.
		for i := range m.Fallbacks {
			if m.Fallbacks[i].APIKey == "" {
				m.Fallbacks[i].APIKey = key
			}
		}
	}
	if m.Provider == "" {
		m.Provider = "openai"
	}
	if m.BaseURL == "" {
		m.BaseURL = "https://api-inference.modelscope.cn/v1"
	}
	if m.ModelName == "" {
		m.ModelName = "deepseek-ai/DeepSeek-V3.1"
	}
	if m.Temperature == 0 {
		m.Temperature = 0.7
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = 2000
	}
}

func applyRetrievalDefaults(r *RetrievalConfig) {
	if r.Backend == "" {
		r.Backend = "lexical"
	}
	if r.TopK == 0 {
		r.TopK = 5
	}
	// A retrieval block with no weights at all means "use the stock
	// ranking"; a partially filled block is taken literally.
	if r.KeywordWeight == 0 && r.ExactMatchWeight == 0 && r.LengthBonusWeight == 0 {
		r.KeywordWeight = 0.6
		r.ExactMatchWeight = 0.3
		r.LengthBonusWeight = 0.1
		if r.MinScoreThreshold == 0 {
			r.MinScoreThreshold = 0.1
		}
	}
	if r.HistoryTurnPairs == 0 {
		r.HistoryTurnPairs = 4
	}
	if r.HistoryContextLimit == 0 {
		r.HistoryContextLimit = 3
	}
}
