package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portfolio-cms/internal/domains/content/model"
	"portfolio-cms/internal/shared/middleware"
	"portfolio-cms/internal/shared/response"
	"portfolio-cms/pkg/container"
)

func setupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())

	router.GET("/health", func(ctx *gin.Context) {
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			response.ErrorResponse(ctx, http.StatusServiceUnavailable, "UNHEALTHY", err.Error())
			return
		}

		// Redis is optional: report it, never fail on it.
		cacheStatus := "ok"
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			cacheStatus = "unavailable"
		}

		response.Success(ctx, http.StatusOK, gin.H{
			"status":  "ok",
			"cache":   cacheStatus,
			"version": c.Config.App.Version,
		})
	})

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.AuthHandler.Login)
		auth.GET("/me", middleware.AuthMiddleware(c.JWTManager), c.AuthHandler.Me)
	}

	registerContentRoutes(v1, c, "projects", model.VariantProject)
	registerContentRoutes(v1, c, "experiments", model.VariantExperiment)

	// Export is project-only; experiments never leave the console. Mounted
	// outside /projects so the static segment does not fight the :id route.
	v1.GET("/exports/projects", middleware.AuthMiddleware(c.JWTManager), c.ContentHandler.ExportProjects)

	return router
}

// registerContentRoutes mounts the shared CRUD surface for one variant.
// Reads are public for the portfolio site; writes require an admin token.
func registerContentRoutes(v1 *gin.RouterGroup, c *container.Container, path string, variant model.Variant) {
	group := v1.Group("/" + path)
	h := c.ContentHandler

	group.GET("", h.List(variant))
	group.GET("/:id", h.Get(variant))

	protected := group.Group("")
	protected.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		protected.POST("", h.Create(variant))
		protected.PUT("/:id", h.Update(variant))
		protected.DELETE("/:id", h.Delete(variant))
	}
}
