package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"buildmarket/project-wizard/wizard-backend/internal/auth"
	"buildmarket/project-wizard/wizard-backend/internal/config"
	"buildmarket/project-wizard/wizard-backend/internal/estimation"
	"buildmarket/project-wizard/wizard-backend/internal/projectapi"
	"buildmarket/project-wizard/wizard-backend/internal/realtime"
	"buildmarket/project-wizard/wizard-backend/internal/receipts"
	"buildmarket/project-wizard/wizard-backend/internal/wizard"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		bootLogger, _ := zap.NewDevelopment()
		bootLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Submission receipts
	receiptRepo, closeDB := openReceipts(cfg.Database, logger)
	defer closeDB()

	// Estimation service
	var estimator estimation.Estimator
	var estimateCache *estimation.Cache
	if cfg.Estimation.BaseURL != "" {
		client := estimation.NewClient(estimation.ClientConfig{
			BaseURL: cfg.Estimation.BaseURL,
			APIKey:  cfg.Estimation.APIKey,
			Timeout: cfg.Estimation.Timeout.Duration,
		}, logger)
		estimator = client
		if cfg.Estimation.CacheTTL.Duration > 0 {
			estimateCache = estimation.NewCache(cfg.Estimation.CacheTTL.Duration)
			estimator = estimation.NewCachingEstimator(client, estimateCache)
		}
	} else {
		logger.Warn("ESTIMATION_BASE_URL not set, estimates are disabled")
	}

	// Project API
	var creator projectapi.Creator
	if cfg.Projects.BaseURL != "" {
		creator = projectapi.NewClient(projectapi.ClientConfig{
			BaseURL: cfg.Projects.BaseURL,
			Timeout: cfg.Projects.Timeout.Duration,
		}, logger)
	} else {
		logger.Warn("PROJECTS_BASE_URL not set, submissions will fail")
	}

	// Wizard sessions
	views := realtime.NewManager(cfg.Security.AllowedOrigins, logger)
	registry := wizard.NewRegistry(cfg.Sessions.IdleTTL.Duration, logger)
	if err := registry.StartSweeper(cfg.Sessions.SweepSchedule); err != nil {
		logger.Fatal("Failed to start session sweeper", zap.Error(err))
	}

	wizardService := wizard.NewService(registry, wizard.Dependencies{
		Estimator:       estimator,
		Creator:         creator,
		Receipts:        receiptRepo,
		Logger:          logger,
		EstimateTimeout: cfg.Estimation.Timeout.Duration,
	}, views)
	wizardHandler := wizard.NewHandler(wizardService, logger)

	verifier := auth.NewVerifier(cfg.Security.JWTSecret)
	if !verifier.Enabled() {
		logger.Warn("JWT_SECRET not set, every session belongs to the anonymous user")
	}

	// Setup Router
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(cfg.Security.AllowedOrigins))

	// Register Routes
	api := router.Group("/api/v1")
	api.Use(auth.Middleware(verifier, logger))
	{
		wizardHandler.RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"sessions":  registry.Len(),
			"views":     views.GetConnectionCount(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	registry.Stop()
	views.Close()
	if estimateCache != nil {
		estimateCache.Stop()
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		zcfg := zap.NewProductionConfig()
		if lvl, perr := zapcore.ParseLevel(level); perr == nil {
			zcfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		logger, err = zcfg.Build()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openReceipts(cfg config.DatabaseConfig, logger *zap.Logger) (receipts.Repository, func()) {
	if !cfg.Enabled {
		logger.Info("Database disabled, keeping submission receipts in memory")
		return receipts.NewMemoryRepository(), func() {}
	}

	logger.Info("Connecting to database",
		zap.String("host", cfg.Host),
		zap.String("db", cfg.DBName))
	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database handle", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime.Duration)

	repo, err := receipts.NewGormRepository(db)
	if err != nil {
		logger.Fatal("Failed to prepare receipts table", zap.Error(err))
	}
	return repo, func() { sqlDB.Close() }
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if len(allowed) == 0 {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if allowed[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
