package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf-api/internal/infrastructure/metrics"
	"bookshelf-api/internal/shared/middleware"
	"bookshelf-api/pkg/cache"
	"bookshelf-api/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)

	if c.Config.Metrics.Enabled {
		router.Use(metrics.Middleware())
		router.GET(c.Config.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupAuthorRoutes(api, c)
		setupBookRoutes(api, c)
	}

	return router
}

// ========================================
// AUTHOR ROUTES
// ========================================
func setupAuthorRoutes(api *gin.RouterGroup, c *container.Container) {
	authors := api.Group("/authors")
	{
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/:id", c.AuthorHandler.GetByID)
		authors.POST("", c.AuthorHandler.Create)
		authors.PUT("/:id", c.AuthorHandler.Update)
		authors.DELETE("/:id", c.AuthorHandler.Delete)
	}
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(api *gin.RouterGroup, c *container.Container) {
	books := api.Group("/books")
	{
		books.GET("", c.BookHandler.List)
		books.GET("/:id", c.BookHandler.GetByID)
		books.POST("", c.BookHandler.Create)
		books.PUT("/:id", c.BookHandler.Update)
		books.DELETE("/:id", c.BookHandler.Delete)
	}
}

// healthCheckHandler: 200 khi DB ping ok, 503 nếu không.
// Cache lỗi chỉ làm status "degraded", không fail health check.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK

		dbStatus := "ok"
		if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = err.Error()
			status = "unavailable"
			code = http.StatusServiceUnavailable
		}

		cacheStatus := "ok"
		if _, noop := appCtx.Cache.(cache.Noop); noop || appCtx.Cache == nil {
			cacheStatus = "disabled"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			cacheStatus = err.Error()
			if code == http.StatusOK {
				status = "degraded"
			}
		}

		body := gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services": gin.H{
				"database": dbStatus,
				"cache":    cacheStatus,
			},
		}
		if stats, err := appCtx.DB.Stats(); err == nil {
			body["pool"] = stats
		}

		c.JSON(code, body)
	}
}
