package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tutorlink/tutorlink-api/api/swagger"
	"github.com/tutorlink/tutorlink-api/internal/handler"
	appMiddleware "github.com/tutorlink/tutorlink-api/internal/middleware"
	"github.com/tutorlink/tutorlink-api/internal/repository"
	"github.com/tutorlink/tutorlink-api/internal/service"
	"github.com/tutorlink/tutorlink-api/pkg/cache"
	"github.com/tutorlink/tutorlink-api/pkg/config"
	"github.com/tutorlink/tutorlink-api/pkg/database"
	"github.com/tutorlink/tutorlink-api/pkg/logger"
	corsmiddleware "github.com/tutorlink/tutorlink-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutorlink/tutorlink-api/pkg/middleware/requestid"
)

// @title TutorLink API
// @version 1.0.0
// @description Tutoring marketplace backend: tutor search, ranking and profile management
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Search.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, search caches disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Search.FilterOptionsCacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()

	searchRepo := repository.NewTutorSearchRepository(db)
	tutorRepo := repository.NewTutorRepository(db)

	searchSvc := service.NewSearchService(searchRepo, cacheSvc, service.SearchServiceConfig{
		DefaultPageSize:       cfg.Search.DefaultPageSize,
		MaxPageSize:           cfg.Search.MaxPageSize,
		FilterOptionsCacheTTL: cfg.Search.FilterOptionsCacheTTL,
		StatisticsCacheTTL:    cfg.Search.StatisticsCacheTTL,
	}, logr)
	tutorSvc := service.NewTutorService(tutorRepo, cacheSvc, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Export.Enabled {
		exportSvc = service.NewExportService(searchSvc, nil, nil, logr)
	}

	searchHandler := handler.NewSearchHandler(searchSvc, exportSvc, metricsSvc)
	tutorHandler := handler.NewTutorHandler(tutorSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(appMiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/search/tutors", searchHandler.Search)
		api.GET("/search/tutors/statistics", searchHandler.Statistics)
		api.GET("/search/tutors/export", searchHandler.Export)
		api.GET("/search/filters", searchHandler.FilterOptions)

		api.GET("/tutors/:id", tutorHandler.Get)
		api.POST("/tutors", tutorHandler.Create)
		api.PUT("/tutors/:id", tutorHandler.Update)
		api.DELETE("/tutors/:id", tutorHandler.Deactivate)
		api.PUT("/tutors/:id/subjects", tutorHandler.ReplaceSubjects)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
