package main

import (
	"github.com/collabhub/backend/internal/config"
	"github.com/collabhub/backend/internal/handlers"
	"github.com/collabhub/backend/internal/models"
	"github.com/collabhub/backend/internal/services"
	"github.com/collabhub/backend/internal/taxonomy"
	"github.com/collabhub/backend/internal/utils"
	"github.com/collabhub/backend/pkg/logger"
)

// appServices holds the initialized services and handlers.
type appServices struct {
	activityLogs *services.ActivityLogService

	userHandler        *handlers.UserHandler
	projectHandler     *handlers.ProjectHandler
	applicationHandler *handlers.ApplicationHandler
	reviewHandler      *handlers.ReviewHandler
	activityLogHandler *handlers.ActivityLogHandler
	healthHandler      *handlers.HealthHandler
}

// bootstrap initializes database, services and schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	db := models.GetDB()

	services.InitActivityLogger(db)

	tax := taxonomy.New(cfg.Taxonomy.Domains, cfg.Taxonomy.Skills)
	validator := services.NewValidator(tax)

	projectService := services.NewProjectService(db, validator, nil)
	applicationService := services.NewApplicationService(db, validator)
	reviewService := services.NewReviewService(db, validator)
	userService := services.NewUserService(db, validator, &cfg.JWT, applicationService, reviewService)
	activityLogService := services.NewActivityLogService(db)

	if err := userService.CreateAdminIfNotExists(&cfg.Admin); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	if err := activityLogService.StartCleanupScheduler(cfg.Log.RetentionDays); err != nil {
		logger.Warn().Err(err).Msg("Failed to start activity log cleanup scheduler")
	}

	return &appServices{
		activityLogs:       activityLogService,
		userHandler:        handlers.NewUserHandler(userService),
		projectHandler:     handlers.NewProjectHandler(projectService, applicationService, userService),
		applicationHandler: handlers.NewApplicationHandler(applicationService),
		reviewHandler:      handlers.NewReviewHandler(reviewService),
		activityLogHandler: handlers.NewActivityLogHandler(activityLogService),
		healthHandler:      handlers.NewHealthHandler(db),
	}
}

// shutdown stops background schedulers.
func (s *appServices) shutdown() {
	s.activityLogs.StopCleanupScheduler()
	logger.Info().Msg("Schedulers stopped")
}
