package main

import (
	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/internal/middleware"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, cfg *config.Config, svc *appServices) {
	r.Use(middleware.RequestID())
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())
	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	db := models.GetDB()

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	api := r.Group("/api")
	api.Use(middleware.AuditLog())
	{
		// Public routes
		api.POST("/users/register", svc.userHandler.Register)
		api.POST("/users/login", svc.userHandler.Login)

		// Project reads are public; a token, when present, identifies the
		// viewer for best_match sorting and the owner's application list
		public := api.Group("")
		public.Use(middleware.OptionalAuth())
		{
			public.GET("/projects", svc.projectHandler.List)
			public.GET("/projects/:id", svc.projectHandler.GetByID)
		}

		// Authenticated routes
		authed := api.Group("")
		authed.Use(middleware.AuthRequired(), middleware.NotBlocked(db))
		{
			authed.GET("/users/my-profile", svc.userHandler.MyProfile)
			authed.GET("/users/:id", svc.userHandler.GetProfile)

			authed.GET("/reviews/:id", svc.reviewHandler.Get)
		}

		// Student routes (ownership checks live in the services)
		student := api.Group("")
		student.Use(middleware.AuthRequired(), middleware.NotBlocked(db),
			middleware.RequireRoles(models.RoleStudent))
		{
			student.POST("/projects", svc.projectHandler.Create)
			student.PUT("/projects/:id", svc.projectHandler.Update)
			student.PATCH("/projects/:id/status", svc.projectHandler.UpdateStatus)
			student.DELETE("/projects/:id", svc.projectHandler.Delete)

			student.POST("/projects/:id/applications", svc.applicationHandler.Create)
			student.PATCH("/applications/:id/status", svc.applicationHandler.UpdateStatus)

			student.POST("/projects/:id/reviews", svc.reviewHandler.Create)
			student.PUT("/reviews/:id", svc.reviewHandler.Update)
			student.DELETE("/reviews/:id", svc.reviewHandler.Delete)
		}

		// Admin routes
		admin := api.Group("")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/applications", svc.applicationHandler.ListAll)
			admin.GET("/reviews", svc.reviewHandler.ListAll)
			admin.GET("/admin/logs", svc.activityLogHandler.List)
			admin.GET("/admin/logs/modules", svc.activityLogHandler.GetModules)
		}
	}
}
