package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innercalm/backend/internal/domain/auth"
	"github.com/innercalm/backend/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "InnerCalm API is running",
			"environment": cfg.App.Environment,
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/token", handler.Login)
			authGroup.GET("/me", authMiddleware(authSvc), handler.Me)
		}

		users := api.Group("/users", authMiddleware(authSvc))
		{
			users.GET("/profile", handler.Me)
			users.PUT("/profile", handler.UpdateProfile)
			users.POST("/change-password", handler.ChangePassword)
			users.GET("/preferences", handler.GetPreferences)
			users.PUT("/preferences", handler.UpdatePreferences)
			users.POST("/deactivate", handler.DeactivateAccount)
			users.DELETE("/account", handler.DeleteAccount)
		}

		chatGroup := api.Group("/chat", authMiddleware(authSvc))
		{
			chatGroup.POST("", handler.SendMessage)
			chatGroup.POST("/stream", handler.StreamMessage)
			chatGroup.GET("/conversations", handler.ListConversations)
			chatGroup.GET("/conversations/:id", handler.GetConversation)
			chatGroup.DELETE("/conversations/:id", handler.DeleteConversation)
		}

		emotions := api.Group("/emotions", authMiddleware(authSvc))
		{
			emotions.GET("/analysis", handler.ListEmotionAnalyses)
			emotions.GET("/patterns", handler.ListEmotionPatterns)
		}

		recs := api.Group("/recommendations", authMiddleware(authSvc))
		{
			recs.POST("/generate", handler.GenerateRecommendations)
			recs.GET("", handler.ListRecommendations)
			recs.GET("/summary/stats", handler.RecommendationSummary)
			recs.GET("/:id", handler.GetRecommendation)
			recs.PATCH("/:id", handler.UpdateRecommendation)
			recs.DELETE("/:id", handler.DeleteRecommendation)
		}

		analyticsGroup := api.Group("/analytics", authMiddleware(authSvc))
		{
			analyticsGroup.GET("/dashboard", handler.AnalyticsDashboard)
			analyticsGroup.GET("/mood-trends", handler.MoodTrends)
		}
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
