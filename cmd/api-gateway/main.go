package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/umarmf343/vea-2025-sub005/api/swagger"
	"github.com/umarmf343/vea-2025-sub005/internal/handler"
	"github.com/umarmf343/vea-2025-sub005/internal/middleware"
	"github.com/umarmf343/vea-2025-sub005/internal/portal"
	"github.com/umarmf343/vea-2025-sub005/internal/repository"
	"github.com/umarmf343/vea-2025-sub005/internal/service"
	"github.com/umarmf343/vea-2025-sub005/pkg/cache"
	"github.com/umarmf343/vea-2025-sub005/pkg/config"
	"github.com/umarmf343/vea-2025-sub005/pkg/jobs"
	"github.com/umarmf343/vea-2025-sub005/pkg/logger"
	corsmiddleware "github.com/umarmf343/vea-2025-sub005/pkg/middleware/cors"
	reqidmiddleware "github.com/umarmf343/vea-2025-sub005/pkg/middleware/requestid"
	"github.com/umarmf343/vea-2025-sub005/pkg/storage"
)

// @title VEA Student Dashboard API
// @version 1.0.0
// @description Read-side gateway that reconciles portal records into a single student dashboard
// @BasePath /
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

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	var redisClient *redis.Client
	if client, redisErr := cache.NewRedis(cfg.Redis); redisErr != nil {
		logr.Warn("redis unavailable, dashboard cache and reports disabled", zap.Error(redisErr))
	} else {
		redisClient = client
		defer redisClient.Close() //nolint:errcheck
	}

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	}

	portalClient := portal.NewClient(cfg.Portal)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Portal:  portalClient,
		Cache:   cacheSvc,
		Metrics: metricsSvc,
		Logger:  logr,
		Config:  service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	var probes []handler.ReadinessProbe
	if redisClient != nil {
		probes = append(probes, handler.ReadinessProbe{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, probes...)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if !cfg.IsProduction() {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/students/:studentId/dashboard", dashboardHandler.Student)

	jobCtx, stopJobs := context.WithCancel(context.Background())

	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled && redisClient != nil {
		reportRepo := repository.NewReportJobRepository(redisClient, cfg.Reports.JobTTL)
		store, storageErr := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if storageErr != nil {
			logr.Sugar().Fatalw("failed to init report storage", "dir", cfg.Reports.StorageDir, "error", storageErr)
		}
		signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		exportSvc := service.NewExportService(dashboardSvc, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Reports.SignedURLTTL,
		}, logr, nil, nil)

		worker := service.NewReportWorker(reportRepo, exportSvc, cfg.Reports.WorkerRetries, logr)
		reportQueue = jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportQueue.Start(jobCtx)

		reportSvc := service.NewReportService(reportRepo, reportQueue, exportSvc, nil, logr, service.ReportServiceConfig{
			ResultTTL:       cfg.Reports.SignedURLTTL,
			CleanupInterval: cfg.Reports.CleanupInterval,
			MaxRetries:      cfg.Reports.WorkerRetries,
		})
		reportSvc.RecoverPendingJobs(jobCtx)
		reportSvc.StartCleanup(jobCtx)

		reportHandler := handler.NewReportHandler(reportSvc, logr)
		api.POST("/students/:studentId/reports", reportHandler.GenerateReport)
		api.GET("/reports/:jobId", reportHandler.ReportStatus)
		api.GET("/export/:token", reportHandler.DownloadReport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server did not stop cleanly", "error", err)
	}
	if reportQueue != nil {
		reportQueue.Stop()
	}
	stopJobs()
	logr.Sugar().Infow("server stopped")
}
