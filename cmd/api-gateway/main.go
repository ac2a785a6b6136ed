package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fleetpass/fleet-compliance-api/api/swagger"
	"github.com/fleetpass/fleet-compliance-api/internal/handler"
	"github.com/fleetpass/fleet-compliance-api/internal/middleware"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	"github.com/fleetpass/fleet-compliance-api/internal/repository"
	"github.com/fleetpass/fleet-compliance-api/internal/service"
	"github.com/fleetpass/fleet-compliance-api/pkg/cache"
	"github.com/fleetpass/fleet-compliance-api/pkg/config"
	"github.com/fleetpass/fleet-compliance-api/pkg/database"
	"github.com/fleetpass/fleet-compliance-api/pkg/jobs"
	"github.com/fleetpass/fleet-compliance-api/pkg/logger"
	"github.com/fleetpass/fleet-compliance-api/pkg/mail"
	corsmiddleware "github.com/fleetpass/fleet-compliance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fleetpass/fleet-compliance-api/pkg/middleware/requestid"
	"github.com/fleetpass/fleet-compliance-api/pkg/storage"
)

// @title Fleet Compliance API
// @version 0.1.0
// @description Driver and vehicle credential lifecycle, onboarding, and compliance exports
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	objectStore, err := storage.New(cfg.Storage)
	if err != nil {
		logr.Sugar().Fatalw("failed to init object storage", "error", err)
	}
	if err := objectStore.EnsureBuckets(ctx); err != nil {
		logr.Sugar().Fatalw("failed to ensure storage buckets", "error", err)
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	driverRepo := repository.NewDriverRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	credentialRepo := repository.NewCredentialRepository(db)
	typeRepo := repository.NewCredentialTypeRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	flagRepo := repository.NewFeatureFlagRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// The notification worker and its queue reference each other; the
	// closure breaks the cycle.
	var notificationSvc *service.NotificationService
	queue := jobs.NewQueue("notifications", func(ctx context.Context, job jobs.Job) error {
		return notificationSvc.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	})

	var sender service.EmailSender
	if cfg.Notifications.Enabled {
		sender = mail.NewSMTPSender(cfg.Notifications)
	} else {
		sender = mail.NewLogSender(logr)
	}
	notificationSvc = service.NewNotificationService(queue, driverRepo, sender, logr)

	queue.Start(ctx)
	defer queue.Stop()

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validator.New(), logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "fleet-compliance-api",
	})
	flagSvc := service.NewFeatureFlagService(flagRepo, cacheRepo, userRepo, cfg.FeatureFlags.CacheTTL, logr)
	credentialSvc := service.NewCredentialService(credentialRepo, typeRepo, historyRepo, progressRepo, notificationSvc, userRepo, logr)
	typeSvc := service.NewCredentialTypeService(typeRepo, service.CredentialTypeServiceConfig{
		DefaultWarningDays: cfg.Credentials.DefaultWarningDays,
	}, logr)
	progressSvc := service.NewProgressService(progressRepo, typeRepo, logr)
	driverSvc := service.NewDriverService(driverRepo, userRepo, vehicleRepo, flagSvc, logr)
	onboardingSvc := service.NewOnboardingService(driverRepo, userRepo, vehicleRepo, credentialSvc, flagSvc, userRepo, logr)
	exportSvc := service.NewExportService(historyRepo, objectStore, service.ExportConfig{
		DownloadTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	credentialHandler := handler.NewCredentialHandler(credentialSvc, driverSvc)
	reviewHandler := handler.NewReviewHandler(credentialSvc)
	progressHandler := handler.NewProgressHandler(progressSvc, driverSvc)
	onboardingHandler := handler.NewOnboardingHandler(onboardingSvc, driverSvc)
	flagHandler := handler.NewFeatureFlagHandler(flagSvc)
	typeHandler := handler.NewCredentialTypeHandler(typeSvc)
	driverHandler := handler.NewDriverHandler(driverSvc)
	reportHandler := handler.NewReportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	authed := api.Group("", middleware.JWT(authSvc))
	authed.POST("/auth/logout", authHandler.Logout)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/flags/effective", flagHandler.Effective)

	driver := authed.Group("/driver", middleware.RequireRoles(models.RoleDriver), middleware.RequireCompany())
	driver.GET("/credentials", credentialHandler.MyChecklist)
	driver.POST("/credentials/:typeId", credentialHandler.Submit)
	driver.GET("/credentials/:typeId/progress", progressHandler.Get)
	driver.PUT("/credentials/:typeId/progress/steps", progressHandler.SaveStep)
	driver.POST("/credentials/:typeId/progress/complete", progressHandler.CompleteStep)
	driver.DELETE("/credentials/:typeId/progress", progressHandler.Clear)
	driver.GET("/profile", driverHandler.MyProfile)
	driver.PATCH("/profile", driverHandler.UpdateMyProfile)
	driver.PUT("/availability", driverHandler.SetAvailability)
	driver.PUT("/payment-info", driverHandler.SetPaymentInfo)
	driver.GET("/vehicles", driverHandler.MyVehicles)
	driver.POST("/vehicles", driverHandler.AddVehicle)
	driver.PATCH("/vehicles/:id", driverHandler.UpdateVehicle)
	driver.GET("/onboarding", onboardingHandler.MyStatus)

	// Vehicle credential routes are shared: ownership and company scope are
	// enforced in the handler.
	vehicles := authed.Group("/vehicles")
	vehicles.GET("/:id/credentials", credentialHandler.VehicleChecklist)
	vehicles.POST("/:id/credentials/:typeId", credentialHandler.SubmitVehicleCredential)

	admin := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	admin.GET("/review/queue", reviewHandler.Queue)
	admin.POST("/review/:id/approve", reviewHandler.Approve)
	admin.POST("/review/:id/reject", reviewHandler.Reject)
	admin.POST("/review/:id/verify", reviewHandler.Verify)
	admin.POST("/review/:id/unverify", reviewHandler.Unverify)
	admin.GET("/review/:id/history", reviewHandler.History)
	admin.GET("/drivers", driverHandler.List)
	admin.GET("/drivers/:id", driverHandler.Get)
	admin.GET("/drivers/:id/onboarding", onboardingHandler.DriverStatus)
	admin.POST("/drivers/:id/status", onboardingHandler.SetDriverStatus)
	admin.GET("/credential-types", typeHandler.List)
	admin.POST("/credential-types", typeHandler.Create)
	admin.GET("/credential-types/:id", typeHandler.Get)
	admin.PATCH("/credential-types/:id", typeHandler.Update)
	admin.DELETE("/credential-types/:id", typeHandler.Archive)
	admin.POST("/credential-types/:id/publish", typeHandler.Publish)
	admin.GET("/flags", flagHandler.List)
	admin.PUT("/flags/:key/default", middleware.RequireRoles(models.RoleSuperAdmin), flagHandler.SetDefault)
	admin.PUT("/flags/:key/override", flagHandler.SetOverride)
	admin.DELETE("/flags/:key/override", flagHandler.ClearOverride)
	admin.POST("/reports/compliance",
		middleware.Audit(userRepo, "report.generate", "compliance_report"),
		reportHandler.GenerateComplianceReport)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
