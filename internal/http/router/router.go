package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/asset-escrow/internal/config"
	"github.com/ignatzorin/asset-escrow/internal/http/handlers"
	"github.com/ignatzorin/asset-escrow/internal/http/middleware"
	"github.com/ignatzorin/asset-escrow/internal/interface/http/handler"
	"github.com/ignatzorin/asset-escrow/internal/observability"
	"github.com/ignatzorin/asset-escrow/internal/service"
)

// Deps - зависимости HTTP слоя.
type Deps struct {
	Transactions *handler.TransactionHandler
	WS           *handlers.WSHandler
	Health       *handlers.HealthHandler
	// Seed подключается только вне production; может быть nil.
	Seed    *handlers.SeedHandler
	Tokens  *service.TokenManager
	Metrics *observability.Metrics
}

// SetupRouter собирает gin.Engine со всеми маршрутами.
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", deps.Health.Health)

	api := r.Group("/api")

	if deps.Seed != nil && !cfg.IsProduction() {
		api.POST("/dev/seed", deps.Seed.Seed)
	}

	api.GET("/fees/quote", deps.Transactions.QuoteFees)

	// WebSocket: токен передаётся в query, т.к. браузер не шлёт заголовки при апгрейде
	api.GET("/ws", deps.WS.Handle)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))
	protected.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		protected.POST("/transactions", deps.Transactions.Create)
		protected.GET("/transactions", deps.Transactions.List)

		tx := protected.Group("/transactions/:id", middleware.UUIDValidator("id"))
		tx.GET("", deps.Transactions.Get)
		tx.POST("/credentials", deps.Transactions.SendCredentials)
		tx.GET("/credentials", deps.Transactions.RevealCredentials)
		tx.POST("/verify", deps.Transactions.Verify)
		tx.POST("/dispute", deps.Transactions.Dispute)
		tx.POST("/cancel", deps.Transactions.Cancel)
		tx.GET("/messages", deps.Transactions.ListMessages)
	}

	return r
}
