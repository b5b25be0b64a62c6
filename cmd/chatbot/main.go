package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/nextmile/chatbot/internal/ai"
	"github.com/nextmile/chatbot/internal/config"
	"github.com/nextmile/chatbot/internal/corpus"
	"github.com/nextmile/chatbot/internal/embedcache"
	"github.com/nextmile/chatbot/internal/handler"
	"github.com/nextmile/chatbot/internal/job"
	"github.com/nextmile/chatbot/internal/memory"
	"github.com/nextmile/chatbot/internal/middleware"
	"github.com/nextmile/chatbot/internal/model"
	"github.com/nextmile/chatbot/internal/repo"
	"github.com/nextmile/chatbot/internal/retrieval"
	"github.com/nextmile/chatbot/internal/schedule"
	"github.com/nextmile/chatbot/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "chatbot",
		Short: "career chatbot backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run chatbot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func loadCorpus(ctx context.Context, cfg *config.Config) ([]model.Record, *corpus.Loader, error) {
	if cfg.Corpus.Type == "" {
		logutil.GetLogger(ctx).Info("corpus source not configured, using built-in sample records")
		return corpus.SampleRecords(), nil, nil
	}
	var args interface{}
	switch cfg.Corpus.Type {
	case "local":
		args = map[string]interface{}{"path": cfg.Corpus.Path}
	case "s3":
		args = cfg.Corpus.S3
	}
	source, err := corpus.NewSource(cfg.Corpus.Type, args)
	if err != nil {
		return nil, nil, fmt.Errorf("init corpus source: %w", err)
	}
	loader := corpus.NewLoader(source)
	records, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load corpus: %w", err)
	}
	return records, loader, nil
}

func buildGenerator(cfg config.ModelConfig) (ai.IGenerator, error) {
	models := append([]config.ModelConfig{cfg}, cfg.Fallbacks...)
	entries := make([]ai.GeneratorEntry, 0, len(models))
	for _, m := range models {
		provider, err := ai.NewProvider(m.Provider, map[string]interface{}{
			"api_key":  m.APIKey,
			"base_url": m.BaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init ai provider %s: %w", m.Provider, err)
		}
		entries = append(entries, ai.GeneratorEntry{
			Name: fmt.Sprintf("%s/%s", m.Provider, m.ModelName),
			Generator: ai.NewGenerator(provider, m.ModelName, ai.GenOptions{
				Temperature: m.Temperature,
				MaxTokens:   m.MaxTokens,
			}),
		})
	}
	return ai.NewGroupGenerator(entries), nil
}

func runServer(cfg *config.Config, db *sql.DB) error {
	ctx := context.Background()
	logutil.GetLogger(ctx).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("corpus_type", cfg.Corpus.Type),
		zap.String("retrieval_backend", cfg.Retrieval.Backend),
	)

	records, loader, err := loadCorpus(ctx, cfg)
	if err != nil {
		return err
	}
	index, err := corpus.NewIndex(records)
	if err != nil {
		return fmt.Errorf("build corpus index: %w", err)
	}
	logutil.GetLogger(ctx).Info("corpus indexed", zap.Int("records", index.Len()))

	holder, err := retrieval.NewHolder(retrieval.Config{
		TopK:                cfg.Retrieval.TopK,
		KeywordWeight:       cfg.Retrieval.KeywordWeight,
		ExactMatchWeight:    cfg.Retrieval.ExactMatchWeight,
		LengthBonusWeight:   cfg.Retrieval.LengthBonusWeight,
		MinScoreThreshold:   cfg.Retrieval.MinScoreThreshold,
		HistoryTurnPairs:    cfg.Retrieval.HistoryTurnPairs,
		HistoryContextLimit: cfg.Retrieval.HistoryContextLimit,
	})
	if err != nil {
		return fmt.Errorf("retrieval config: %w", err)
	}

	generator, err := buildGenerator(cfg.Model)
	if err != nil {
		return err
	}

	var retriever retrieval.Retriever
	var vector *retrieval.Vector
	switch cfg.Retrieval.Backend {
	case "vector":
		pgdb, err := repo.OpenPostgres(cfg.Vector.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		if err := repo.EnsureVectorSchema(ctx, pgdb, cfg.Vector.Dimension); err != nil {
			return fmt.Errorf("vector schema: %w", err)
		}
		embedProvider, err := ai.NewEmbedProvider(cfg.Model.Provider, map[string]interface{}{
			"api_key": cfg.Model.APIKey,
		})
		if err != nil {
			return fmt.Errorf("init embed provider: %w", err)
		}
		embedder := ai.NewEmbedder(embedProvider, cfg.Model.EmbedModel)
		cacheSize := cfg.Vector.CacheSize
		if cacheSize == 0 {
			cacheSize = 4096
		}
		cacheTTL := time.Duration(cfg.Vector.CacheTTLMinutes) * time.Minute
		if cacheTTL == 0 {
			cacheTTL = 2 * time.Hour
		}
		embedder = embedcache.WrapLRU(embedder, cacheSize, cacheTTL)
		vector = retrieval.NewVector(pgdb, embedder, holder)
		if err := vector.Sync(ctx, index.Snapshot()); err != nil {
			return fmt.Errorf("sync record embeddings: %w", err)
		}
		retriever = vector
	default:
		retriever = retrieval.NewLexical(index, holder)
	}

	convRepo := repo.NewConversationRepo(db)
	sessions := memory.NewSessions()

	chatService := service.NewChatService(retriever, holder, generator, sessions, convRepo)
	systemService := service.NewSystemService(index, loader, holder, vector, service.ModelInfo{
		Provider:    cfg.Model.Provider,
		ModelName:   cfg.Model.ModelName,
		Temperature: cfg.Model.Temperature,
		MaxTokens:   cfg.Model.MaxTokens,
	})

	deps := handler.RouterDeps{
		Chat:    handler.NewChatHandler(chatService),
		History: handler.NewHistoryHandler(convRepo, sessions),
		System:  handler.NewSystemHandler(systemService, chatService),
	}

	scheduler := schedule.NewScheduler()
	if cfg.Jobs.CorpusReloadSpec != "" && loader != nil {
		if err := scheduler.AddJob(job.NewCorpusReloadJob(systemService), cfg.Jobs.CorpusReloadSpec); err != nil {
			return fmt.Errorf("schedule corpus reload: %w", err)
		}
	}
	if cfg.Jobs.CleanupSpec != "" {
		if err := scheduler.AddJob(job.NewRetentionJob(convRepo, cfg.Jobs.RetentionDays), cfg.Jobs.CleanupSpec); err != nil {
			return fmt.Errorf("schedule conversation retention: %w", err)
		}
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(ctx).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(runCtx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-runCtx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
