// internal/app/router.go
package app

import (
	"net/http"

	authHandler "warmup-service/internal/handlers/auth"
	clientHandler "warmup-service/internal/handlers/client"
	dashboardHandler "warmup-service/internal/handlers/dashboard"
	healthHandler "warmup-service/internal/handlers/health"
	numberHandler "warmup-service/internal/handlers/number"
	"warmup-service/internal/middleware"
	"warmup-service/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	ClientHandler    *clientHandler.ClientHandler
	NumberHandler    *numberHandler.NumberHandler
	DashboardHandler *dashboardHandler.DashboardHandler
	HealthHandler    *healthHandler.HealthHandler
	AuthMiddleware   *middleware.AuthMiddleware
	Metrics          *metrics.Metrics
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	// ==================== Metrics ====================
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", h.HealthHandler.Health)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Clients ====================
	clients := api.Group("/clients")
	clients.Use(h.AuthMiddleware.Auth())
	{
		clients.GET("", h.ClientHandler.ListClients)
		clients.POST("", h.ClientHandler.CreateClient)
		clients.GET("/:id", h.ClientHandler.GetClient)
		clients.PUT("/:id", h.ClientHandler.UpdateClient)
		clients.DELETE("/:id", h.ClientHandler.DeleteClient)
		clients.PUT("/:id/status", h.ClientHandler.UpdateClientStatus)
		clients.PUT("/:id/billing", h.AuthMiddleware.RequireRole("admin"), h.ClientHandler.SetBilling)
	}

	// ==================== Numbers ====================
	numbers := api.Group("/numbers")
	numbers.Use(h.AuthMiddleware.Auth())
	{
		numbers.GET("", h.NumberHandler.ListNumbers)
		numbers.POST("", h.NumberHandler.CreateNumber)
		numbers.GET("/:id", h.NumberHandler.GetNumber)
		numbers.PUT("/:id", h.NumberHandler.UpdateNumber)
		numbers.DELETE("/:id", h.NumberHandler.DeleteNumber)
		numbers.PUT("/:id/status", h.NumberHandler.UpdateNumberStatus)

		numbers.POST("/:id/interactions", h.NumberHandler.RegisterInteraction)
		numbers.GET("/:id/interactions", h.NumberHandler.GetInteractions)

		numbers.POST("/:id/heating-plans", h.NumberHandler.SetHeatingPlan)
		numbers.PUT("/:id/heating-plans/:planId", h.NumberHandler.UpdateHeatingPlan)

		numbers.PUT("/:id/health", h.NumberHandler.SaveHealth)
	}

	// ==================== Dashboard ====================
	dashboard := api.Group("/dashboard")
	dashboard.Use(h.AuthMiddleware.Auth())
	{
		dashboard.GET("/summary", h.DashboardHandler.Summary)
	}

	r.NoRoute(func(c *gin.Context) {
		logger.Debug("route not found", zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})
}
