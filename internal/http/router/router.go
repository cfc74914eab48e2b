package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/refind-app/refind-backend/internal/config"
	"github.com/refind-app/refind-backend/internal/http/handlers"
	"github.com/refind-app/refind-backend/internal/http/middleware"
	"github.com/refind-app/refind-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	itemHandler *handlers.ItemHandler,
	claimHandler *handlers.ClaimHandler,
	notificationHandler *handlers.NotificationHandler,
	adminHandler *handlers.AdminHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	// Регистрация и вход защищены жёстким лимитом от перебора.
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(5, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты: каталог объявлений и WebSocket.
	api.GET("/items", itemHandler.List)
	api.GET("/items/:id", middleware.UUIDValidator("id"), itemHandler.Get)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	protected.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		protected.GET("/users/me", authHandler.Me)
		protected.PUT("/users/me", authHandler.UpdateMe)

		protected.POST("/items", itemHandler.Create)
		protected.GET("/items/mine", itemHandler.ListMine)
		protected.PUT("/items/:id", middleware.UUIDValidator("id"), itemHandler.Update)
		protected.DELETE("/items/:id", middleware.UUIDValidator("id"), itemHandler.Delete)

		// Подача заявок ограничена отдельным, более жёстким лимитом.
		protected.POST("/claims", middleware.RateLimitMiddleware(10, cfg.RateLimitPeriod), claimHandler.Create)
		protected.GET("/claims/sent", claimHandler.ListSent)
		protected.GET("/claims/received", claimHandler.ListReceived)
		protected.PUT("/claims/:id/approve", middleware.UUIDValidator("id"), claimHandler.Approve)
		protected.PUT("/claims/:id/reject", middleware.UUIDValidator("id"), claimHandler.Reject)

		protected.GET("/notifications", notificationHandler.List)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.DELETE("/notifications/:id", middleware.UUIDValidator("id"), notificationHandler.Delete)
	}

	// Административные маршруты.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager))
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/ban", middleware.UUIDValidator("id"), adminHandler.BanUser)
		admin.PUT("/users/:id/unban", middleware.UUIDValidator("id"), adminHandler.UnbanUser)
		admin.DELETE("/items/:id", middleware.UUIDValidator("id"), adminHandler.DeleteItem)
	}

	return r
}
