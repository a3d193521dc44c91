package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/jobwork/backend/internal/application/billing"
	catalogapp "github.com/jobwork/backend/internal/application/catalog"
	jobworkapp "github.com/jobwork/backend/internal/application/jobwork"
	partnerapp "github.com/jobwork/backend/internal/application/partner"
	stockapp "github.com/jobwork/backend/internal/application/stock"
	"github.com/jobwork/backend/internal/infrastructure/config"
	"github.com/jobwork/backend/internal/infrastructure/logger"
	"github.com/jobwork/backend/internal/infrastructure/persistence"
	"github.com/jobwork/backend/internal/interfaces/http/handler"
	"github.com/jobwork/backend/internal/interfaces/http/middleware"
	"github.com/jobwork/backend/internal/interfaces/http/router"
)

//	@title			Job Work Backend API
//	@version		1.0
//	@description	Job-work manufacturing billing backend with three-stage
//	@description	quantity reconciliation and an append-only stock ledger.

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Job Work Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	orderRepo := persistence.NewGormIntakeOrderRepository(db.DB)
	deliveryRepo := persistence.NewGormDeliveryRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	stockEntryRepo := persistence.NewGormStockEntryRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	processRepo := persistence.NewGormProcessRepository(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize application services
	orderService := jobworkapp.NewIntakeOrderService(orderRepo, txScope)
	deliveryService := jobworkapp.NewDeliveryService(deliveryRepo, txScope, log)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, txScope, log)
	pendingService := billingapp.NewPendingService(deliveryRepo, orderRepo, itemRepo, invoiceRepo)
	ledgerService := stockapp.NewLedgerService(stockEntryRepo)
	recomputeService := stockapp.NewRecomputeService(txScope, log)
	itemService := catalogapp.NewItemService(itemRepo, processRepo)
	partyService := partnerapp.NewPartyService(partyRepo)

	// Initialize HTTP handlers
	orderHandler := handler.NewIntakeOrderHandler(orderService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, pendingService)
	stockHandler := handler.NewStockHandler(ledgerService, recomputeService)
	catalogHandler := handler.NewCatalogHandler(itemService)
	partyHandler := handler.NewPartyHandler(partyService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID first, then recovery, logging,
	// security headers and CORS
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		orderHandler,
		deliveryHandler,
		invoiceHandler,
		stockHandler,
		catalogHandler,
		partyHandler,
	)
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
