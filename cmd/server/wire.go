//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/innercalm/backend/internal/bootstrap"
	"github.com/innercalm/backend/internal/domain/analytics"
	"github.com/innercalm/backend/internal/domain/auth"
	"github.com/innercalm/backend/internal/domain/chat"
	"github.com/innercalm/backend/internal/domain/emotion"
	"github.com/innercalm/backend/internal/domain/recommendation"
	"github.com/innercalm/backend/internal/infra/config"
	"github.com/innercalm/backend/internal/infra/llm/openai"
	httpiface "github.com/innercalm/backend/internal/interface/http"
	"github.com/innercalm/backend/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideEmotionConfig,
		provideChatConfig,
		provideOpenAIClient,
		provideEmotionClassifier,
		provideEmotionStore,
		providePersonas,
		providePool,
		provideUserRepository,
		provideChatRepository,
		provideEmotionRepository,
		provideRecommendationRepository,
		provideAnalyticsRepository,
		auth.NewService,
		emotion.NewService,
		chat.NewService,
		recommendation.NewService,
		analytics.NewService,
		wire.Bind(new(chat.ChatClient), new(*openai.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
