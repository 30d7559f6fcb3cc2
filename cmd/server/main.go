package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/config"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/middleware"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/entity"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/handler"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting safety document service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Document{},
		&entity.DocumentHistory{},
		&entity.EducationCategory{},
		&entity.TargetRule{},
		&entity.UserEducationRequirement{},
		&entity.EducationRecord{},
		&entity.EducationDailyLog{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": Version, "build_time": BuildTime})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWT.Secret))

	// Documents
	docs := api.Group("/documents")
	{
		docs.GET("", h.Document.List)
		docs.POST("", h.Document.Create)

		// Period-scoped wrappers must be registered before /:id so the
		// static segments win the route match.
		for _, period := range []string{"daily", "weekly", "monthly", "quarterly"} {
			docs.GET("/"+period, h.Typed.List(period))
			docs.POST("/"+period, h.Typed.Create(period))
			docs.PUT("/"+period, h.Typed.Update(period))
			docs.DELETE("/"+period, h.Typed.Delete(period))
		}

		docs.GET("/:id", h.Document.Get)
		docs.PUT("/:id", h.Document.Update)
		docs.DELETE("/:id", h.Document.Delete)
		docs.GET("/:id/history", h.Document.History)
	}

	// Education
	edu := api.Group("/education")
	{
		edu.GET("/daily-logs", h.Education.ListDailyLogs)
		edu.POST("/daily-logs", h.Education.CreateDailyLogs)
		edu.PATCH("/daily-logs", h.Education.PatchDailyLogs)
		edu.DELETE("/daily-logs", h.Education.DeleteDailyLog)

		edu.GET("/records", h.Education.ListRecords)
		edu.POST("/records", h.Education.CreateRecord)
		edu.PUT("/records", h.Education.VerifyRecord)

		edu.GET("/requirements", h.Education.ListRequirements)
		edu.POST("/requirements", h.Education.CreateRequirements)
		edu.PUT("/requirements", h.Education.UpdateRequirement)
		edu.PATCH("/requirements", h.Education.PatchRequirements)

		edu.GET("/target-rules", h.Education.ListTargetRules)
		edu.POST("/target-rules", h.Education.CreateTargetRule)
		edu.PUT("/target-rules", h.Education.UpdateTargetRule)
		edu.PATCH("/target-rules", h.Education.PatchTargetRules)
		edu.DELETE("/target-rules", h.Education.DeleteTargetRule)

		edu.GET("/categories", h.Education.ListCategories)
		edu.POST("/categories", h.Education.CreateCategory)

		edu.GET("/statistics", h.Education.Statistics)
		edu.GET("/statistics/export", h.Education.ExportStatistics)
		edu.POST("/upload", h.Education.UploadProof)
	}

	// Laws and compliance
	api.GET("/laws", h.Compliance.ListLaws)
	api.GET("/laws/:id", h.Compliance.GetLaw)
	api.GET("/compliance/status", h.Compliance.Status)
	api.GET("/compliance/overview", h.Compliance.Overview)
}
