package main

import (
	"context"
	"net/http"
	"time"

	"book-catalog/internal/shared/middleware"
	"book-catalog/internal/shared/response"
	"book-catalog/pkg/container"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Recovery runs first so panics anywhere below still get the error envelope.
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.RateLimit(c.Config.RateLimit.RPS, c.Config.RateLimit.Burst),
	)

	router.NoRoute(func(ctx *gin.Context) {
		response.Error(ctx, http.StatusNotFound, "Not Found", "No route for "+ctx.Request.Method+" "+ctx.Request.URL.Path)
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		c.BookHandler.RegisterRoutes(v1.Group("/books"))
	}

	return router
}

// healthCheckHandler reports UP when the book store answers a ping.
// The cache is informational only.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := appCtx.BookService.Health(ctx); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			response.ServiceUnavailable(c, "Book store is unreachable")
			return
		}

		cacheStatus := "disabled"
		if appCtx.Cache != nil {
			cacheStatus = "UP"
			if err := appCtx.Cache.Ping(ctx); err != nil {
				cacheStatus = "DOWN"
			}
		}

		response.Success(c, http.StatusOK, gin.H{
			"status":  "UP",
			"store":   appCtx.Config.Store.Driver,
			"cache":   cacheStatus,
			"version": appCtx.Config.App.Version,
		})
	}
}
