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
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edubridge/volunteer-hub-api/api/swagger"
	"github.com/edubridge/volunteer-hub-api/internal/handler"
	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/internal/repository"
	"github.com/edubridge/volunteer-hub-api/internal/service"
	"github.com/edubridge/volunteer-hub-api/pkg/cache"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	"github.com/edubridge/volunteer-hub-api/pkg/database"
	"github.com/edubridge/volunteer-hub-api/pkg/jobs"
	"github.com/edubridge/volunteer-hub-api/pkg/logger"
	corsmiddleware "github.com/edubridge/volunteer-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edubridge/volunteer-hub-api/pkg/middleware/requestid"
)

// @title Volunteer Hub API
// @version 0.1.0
// @description Multi-source reconciliation and import engine for classroom volunteering
// @BasePath /api/v1
// @schemes http

// warmPayload identifies the derived-progress slice to recompute after a
// completed import batch.
type warmPayload struct {
	TenantSlug   string
	AcademicYear string
}

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, cfg.Cache.KeySpace, cfg.Cache.TTL, cfg.Cache.Enabled, metrics, logr)

	tenantSvc := service.NewTenantService(db, repository.NewTenantRepository(db), cfg.Tenants, cfg.Database, logr)
	statusSvc := service.NewStatusService(tenantSvc, cacheSvc, cfg.Progress, cfg.Locality, logr)
	reviewSvc := service.NewReviewService(tenantSvc, cfg.ReviewQueue, cacheSvc, logr)

	importSvc := service.NewImportService(
		tenantSvc,
		cacheRepo,
		service.NewMergeEngine(service.NewOwnershipRegistry()),
		cacheSvc,
		metrics,
		cfg.Imports,
		cfg.Matching,
		cfg.Progress,
		logr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Derived progress is recomputed in the background after participation and
	// roster batches so the first dashboard read does not pay the aggregation
	// cost.
	warmQueue := jobs.NewQueue("progress-warm", func(ctx context.Context, job jobs.Job) error {
		payload, ok := job.Payload.(warmPayload)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		_, err := statusSvc.ListTeacherProgress(ctx, payload.TenantSlug, payload.AcademicYear)
		return err
	}, jobs.QueueConfig{Workers: 2, Logger: logr})
	warmQueue.Start(ctx)
	defer warmQueue.Stop()

	importSvc.OnBatchCompleted(func(batch *models.ImportBatch) {
		if batch.EntityType != models.EntityParticipation && batch.EntityType != models.EntityTeacher {
			return
		}
		payload := warmPayload{AcademicYear: statusSvc.CurrentAcademicYear()}
		if batch.TenantSlug != nil {
			payload.TenantSlug = *batch.TenantSlug
		}
		if err := warmQueue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "warm_progress", Payload: payload}); err != nil {
			logr.Warn("failed to enqueue progress warm job", zap.String("batch_id", batch.ID), zap.Error(err))
		}
	})

	importHandler := handler.NewImportHandler(importSvc, cfg.Imports.MaxFileSizeByte)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	progressHandler := handler.NewProgressHandler(statusSvc)
	volunteerHandler := handler.NewVolunteerHandler(statusSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	})

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		imports := api.Group("/imports")
		imports.POST("/pathful", importHandler.ImportPathful)
		imports.POST("/roster", importHandler.ImportRoster)
		imports.POST("/salesforce/events", importHandler.SyncEvents)
		imports.POST("/salesforce/volunteers", importHandler.SyncVolunteers)
		imports.POST("/salesforce/organizations", importHandler.SyncOrganizations)
		imports.GET("/batches", importHandler.ListBatches)
		imports.GET("/batches/:id", importHandler.GetBatch)
		imports.GET("/batches/:id/errors", importHandler.ListRowErrors)
		imports.GET("/batches/:id/errors/export", importHandler.ExportRowErrors)

		review := api.Group("/review")
		review.GET("", reviewHandler.List)
		review.GET("/:id", reviewHandler.Get)
		review.POST("/:id/resolve", reviewHandler.Resolve)
		review.POST("/:id/dismiss", reviewHandler.Dismiss)

		progress := api.Group("/progress")
		progress.GET("/teachers", progressHandler.List)
		progress.GET("/teachers/:id", progressHandler.Get)
		progress.POST("/reset", progressHandler.Reset)

		api.GET("/volunteers", volunteerHandler.List)
		api.GET("/volunteers/:id", volunteerHandler.Get)

		tenants := api.Group("/tenants")
		tenants.GET("", tenantHandler.List)
		tenants.POST("", tenantHandler.Provision)
		tenants.DELETE("/:slug", tenantHandler.Deactivate)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
