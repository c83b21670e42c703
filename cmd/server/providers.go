package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/innercalm/backend/internal/domain/analytics"
	"github.com/innercalm/backend/internal/domain/auth"
	"github.com/innercalm/backend/internal/domain/chat"
	"github.com/innercalm/backend/internal/domain/emotion"
	"github.com/innercalm/backend/internal/domain/recommendation"
	"github.com/innercalm/backend/internal/infra/analyticsrepo"
	"github.com/innercalm/backend/internal/infra/chatrepo"
	"github.com/innercalm/backend/internal/infra/config"
	"github.com/innercalm/backend/internal/infra/emotioncache"
	"github.com/innercalm/backend/internal/infra/emotionrepo"
	"github.com/innercalm/backend/internal/infra/llm/openai"
	"github.com/innercalm/backend/internal/infra/recrepo"
	"github.com/innercalm/backend/internal/infra/sentiment/hface"
	"github.com/innercalm/backend/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		SecretKey: cfg.Auth.SecretKey,
		TokenTTL:  cfg.Auth.AccessTokenExpire,
	}
}

func provideEmotionConfig(cfg *config.Config) emotion.Config {
	return emotion.Config{Threshold: cfg.Emotion.Threshold}
}

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxHistory:  cfg.Chat.MaxConversationHistory,
	}
}

func provideOpenAIClient(cfg *config.Config) (*openai.Client, error) {
	return openai.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
}

// providePool opens a shared Postgres pool, or returns nil when the DSN
// points at anything else so the memory repositories take over.
func providePool(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	if !cfg.UsesPostgres() {
		logger.Info("database url is not postgres, using memory repositories")
		return nil
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repositories", "error", err)
		return nil
	}
	if cfg.Database.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Database.MaxConns
	}
	if cfg.Database.MinConns > 0 {
		poolConfig.MinConns = cfg.Database.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repositories", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repositories", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("postgres repositories enabled")
	return pool
}

func provideUserRepository(pool *pgxpool.Pool) auth.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideChatRepository(pool *pgxpool.Pool) chat.Repository {
	if pool == nil {
		return chatrepo.NewMemoryRepository()
	}
	return chatrepo.NewPostgresRepository(pool)
}

func provideEmotionRepository(pool *pgxpool.Pool) emotion.Repository {
	if pool == nil {
		return emotionrepo.NewMemoryRepository()
	}
	return emotionrepo.NewPostgresRepository(pool)
}

func provideRecommendationRepository(pool *pgxpool.Pool) recommendation.Repository {
	if pool == nil {
		return recrepo.NewMemoryRepository()
	}
	return recrepo.NewPostgresRepository(pool)
}

func provideAnalyticsRepository(pool *pgxpool.Pool) analytics.EventRepository {
	if pool == nil {
		return analyticsrepo.NewMemoryRepository()
	}
	return analyticsrepo.NewPostgresRepository(pool)
}

func provideEmotionStore(cfg *config.Config, logger *slog.Logger) emotion.Store {
	if cfg.Cache.Enabled {
		opt, err := buildValkeyOptions(cfg.Cache.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return emotioncache.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return emotioncache.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("valkey emotion cache enabled", "addr", cfg.Cache.Addr)
			return emotioncache.NewValkeyStore(client, "emotion")
		}
	}
	return emotioncache.NewMemoryStore()
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

// provideEmotionClassifier returns the remote classifier when credentials
// are configured, otherwise nil so the lexicon fallback runs alone.
func provideEmotionClassifier(cfg *config.Config, logger *slog.Logger) emotion.Classifier {
	if cfg.Emotion.HumeAPIKey == "" && cfg.Emotion.InferenceURL == "" {
		logger.Info("no emotion inference credentials, using lexicon classifier only")
		return nil
	}
	client := hface.NewClient(cfg.Emotion.HumeAPIKey, cfg.Emotion.InferenceURL)
	if cfg.Emotion.PreloadModel {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := client.Classify(ctx, "warmup"); err != nil {
			logger.Warn("emotion model preload failed", "error", err)
		} else {
			logger.Info("emotion model preloaded")
		}
	}
	return client
}

func providePersonas(cfg *config.Config, logger *slog.Logger) *chat.PersonaCatalog {
	catalog, err := chat.LoadPersonas(cfg.Chat.PersonasPath)
	if err != nil {
		logger.Error("failed to load personas, using builtin catalog", "error", err)
		catalog, _ = chat.LoadPersonas("")
	}
	return catalog
}
