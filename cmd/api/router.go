package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldserve-backend/internal/shared/middleware"
	"fieldserve-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupCustomerRoutes(v1, c)
		setupAgentRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// CUSTOMER ROUTES
// ========================================
func setupCustomerRoutes(v1 *gin.RouterGroup, c *container.Container) {
	customer := v1.Group("")
	customer.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		c.BookingHandler.RegisterCustomerRoutes(customer)
		c.CouponHandler.RegisterCustomerRoutes(customer)
	}
}

// ========================================
// AGENT ROUTES
// ========================================
func setupAgentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	agent := v1.Group("")
	agent.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AgentMiddleware(),
	)
	{
		c.BookingHandler.RegisterAgentRoutes(agent)
		c.AgentHandler.RegisterAgentRoutes(agent)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)
	{
		c.BookingHandler.RegisterAdminRoutes(admin)
		c.CouponHandler.RegisterAdminRoutes(admin)
		c.AgentHandler.RegisterAdminRoutes(admin)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
