// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"link-router/internal/cache"
	"link-router/internal/config"
	"link-router/internal/domain"
	"link-router/internal/handler"
	"link-router/internal/recorder"
	postgresStore "link-router/internal/repository/postgres"
	"link-router/internal/resolver"
	"link-router/internal/selector"
	customLogger "link-router/pkg/logger"
)

// gormWriter wraps our custom logger to implement gorm's logger.Writer interface
type gormWriter struct {
	logger *customLogger.Logger
}

// Printf implements the logger.Writer interface
func (w *gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Info(fmt.Sprintf(format, args...))
}

func main() {
	// Load environment variables from .env file (development only)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Initialize structured logger
	appLogger := customLogger.NewLogger()
	appLogger.Info("Starting Link Router Service")

	// Load application configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		appLogger.Fatal("Failed to load configuration", "error", err)
	}

	// Initialize database connection
	db, err := initDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", "error", err)
	}

	// Initialize the store adapter
	store := postgresStore.NewStore(db)

	// Process-local caches with their TTLs and background sweeps
	domainCache := cache.NewDomainCache(cfg.DomainCacheTTL)
	linkCache := cache.NewLinkCache(cfg.LinkCacheTTL)

	janitorCtx, stopJanitors := context.WithCancel(context.Background())
	domainCache.StartJanitor(janitorCtx, cfg.DomainCacheSweep)
	linkCache.StartJanitor(janitorCtx, cfg.LinkCacheSweep)

	// Asynchronous click persistence
	clickRecorder := recorder.New(store, appLogger, cfg.ClickBufferSize, cfg.ClickWorkerCount)

	// Redirect resolution core with dependency injection
	sel := selector.New(rand.NewSource(time.Now().UnixNano()))
	res := resolver.New(domainCache, linkCache, store, sel, clickRecorder, appLogger)

	// HTTP boundary
	redirectHandler := handler.NewRedirectHandler(res, cfg, appLogger)
	router := setupRouter(redirectHandler, cfg, appLogger)

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine for graceful shutdown
	go func() {
		appLogger.Info("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	// Graceful shutdown with 30 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	// Stop background sweeps, then drain the click buffer before exit
	stopJanitors()
	clickRecorder.Close()

	appLogger.Info("Server exited successfully")
}

// initDatabase initializes the PostgreSQL database connection with connection pooling
func initDatabase(cfg *config.Config, log *customLogger.Logger) (*gorm.DB, error) {
	writer := &gormWriter{logger: log}

	gLogger := gormlogger.New(
		writer, // Use our custom writer
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	// Connect to PostgreSQL with retry logic
	var db *gorm.DB
	var err error

	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                 gLogger,
			SkipDefaultTransaction: true,
			PrepareStmt:            true,
		})

		if err == nil {
			break
		}

		log.Warn("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(5 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	// Schema for the records the router reads and the clicks it writes.
	// The management layer owns mutations; migration here keeps a fresh
	// instance bootable on its own.
	if err := db.AutoMigrate(&domain.Domain{}, &domain.Link{}, &domain.TargetURL{}, &domain.Click{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Get underlying SQL DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// Configure connection pool for optimal performance
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established successfully")
	return db, nil
}

// setupRouter configures the Gin router with middleware and routes
func setupRouter(redirectHandler *handler.RedirectHandler, cfg *config.Config, log *customLogger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Apply global middleware
	router.Use(gin.Recovery()) // Panic recovery
	router.Use(handler.LoggerMiddleware(log))
	router.Use(handler.SecurityHeadersMiddleware())
	router.Use(handler.RateLimitMiddleware(cfg.RateLimitPerMinute))
	router.Use(handler.TimeoutMiddleware(cfg.RequestTimeout))

	// Health check endpoint
	router.GET("/health", redirectHandler.Health)

	// Everything else is a short-link candidate. NoRoute instead of a
	// catch-all route so /health keeps working on routed domains.
	router.NoRoute(redirectHandler.Handle)

	return router
}
