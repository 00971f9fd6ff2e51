package rest

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
)

// NewRouter wires the HTTP API over the room operations.
func NewRouter(logger *slog.Logger, limits config.RateLimit, roomUseCase roomUseCase) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	ping := NewPingHandler()
	router.GET("/ping", ping.Ping)

	handlers := NewHandlers(logger, roomUseCase)
	limiter := NewRateLimiter(limits)

	rooms := router.Group("/rooms", playerIdentity(), limiter.Middleware())
	{
		rooms.POST("/random", handlers.CreateOrJoinRandom)
		rooms.POST("/invite", handlers.CreateInvite)
		rooms.POST("/invite/:code/join", handlers.JoinInvite)
		rooms.POST("/ai", handlers.CreateAIMatch)

		rooms.GET("/:id", handlers.GetRoom)
		rooms.POST("/:id/moves", handlers.SubmitMove)
		rooms.POST("/:id/ai-turn", handlers.PlayAITurn)
		rooms.GET("/:id/outcome", handlers.PollOutcome)
		rooms.POST("/:id/leave", handlers.LeaveRoom)
		rooms.POST("/:id/background", handlers.Background)
		rooms.POST("/:id/foreground", handlers.Foreground)
	}

	players := router.Group("/players", playerIdentity(), limiter.Middleware())
	{
		players.GET("/me", handlers.GetProfile)
		players.PUT("/me", handlers.UpdateProfile)
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"playerID", c.GetString(playerIDKey),
		)
	}
}
