package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/clientdesk/backend/internal/application/billing"
	deliveryapp "github.com/clientdesk/backend/internal/application/delivery"
	projectapp "github.com/clientdesk/backend/internal/application/project"
	"github.com/clientdesk/backend/internal/infrastructure/auth"
	"github.com/clientdesk/backend/internal/infrastructure/config"
	"github.com/clientdesk/backend/internal/infrastructure/event"
	"github.com/clientdesk/backend/internal/infrastructure/logger"
	"github.com/clientdesk/backend/internal/infrastructure/persistence"
	"github.com/clientdesk/backend/internal/infrastructure/ratelimit"
	"github.com/clientdesk/backend/internal/infrastructure/storage"
	"github.com/clientdesk/backend/internal/infrastructure/watermark"
	"github.com/clientdesk/backend/internal/interfaces/http/handler"
	"github.com/clientdesk/backend/internal/interfaces/http/middleware"
	"github.com/clientdesk/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

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

	log.Info("Starting ClientDesk Backend",
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
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	deliverableRepo := persistence.NewGormDeliverableRepository(db.DB)
	feedbackRepo := persistence.NewGormFeedbackRepository(db.DB)
	signoffRepo := persistence.NewGormSignoffRepository(db.DB)
	paymentEventRepo := persistence.NewGormPaymentEventRepository(db.DB)

	// Transaction scopes: the billing scope commits ledger insert and
	// project update atomically; the delivery scope does the same for the
	// sign-off writes
	txScope := persistence.NewGormTransactionScope(db.DB)
	deliveryScope := persistence.NewGormDeliveryTransactionScope(db.DB)

	// In-process event bus; the gate audit handler logs every payment and
	// release transition
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewGateAuditHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Artifact object storage
	artifactStorage, err := buildArtifactStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize artifact storage", zap.Error(err))
	}

	// Watermarking pipeline (raster + PDF)
	watermarkPipeline := watermark.NewPipeline(&cfg.Watermark, log)

	// Initialize application services
	paymentService := billingapp.NewPaymentService(billingapp.PaymentServiceConfig{
		Scope:          txScope,
		Ledger:         paymentEventRepo,
		EventPublisher: eventBus,
		Logger:         log,
	})
	webhookService := billingapp.NewWebhookService(billingapp.WebhookServiceConfig{
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Environment:   cfg.Stripe.Environment,
		Payments:      paymentService,
		Logger:        log,
	})
	deliveryService := deliveryapp.NewDeliveryService(deliveryapp.DeliveryServiceConfig{
		ProjectRepo:      projectRepo,
		DeliverableRepo:  deliverableRepo,
		FeedbackRepo:     feedbackRepo,
		SignoffRepo:      signoffRepo,
		Scope:            deliveryScope,
		Storage:          artifactStorage,
		Watermarker:      watermarkPipeline,
		WatermarkTimeout: cfg.Watermark.Timeout,
		PresignExpiry:    cfg.Storage.PresignExpiry,
		EventPublisher:   eventBus,
		Logger:           log,
	})
	projectService := projectapp.NewProjectService(projectapp.ProjectServiceConfig{
		ProjectRepo:     projectRepo,
		DeliverableRepo: deliverableRepo,
		FeedbackRepo:    feedbackRepo,
		Logger:          log,
	})

	// JWT service for operator authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Webhook rate limiter: Redis-backed counters when configured so the
	// limit holds across instances, in-process otherwise
	webhookLimiter := buildWebhookLimiter(cfg, log)

	// Initialize HTTP handlers
	webhookHandler := handler.NewWebhookHandler(webhookService, webhookLimiter)
	projectHandler := handler.NewProjectHandler(projectService, paymentService)
	deliverableHandler := handler.NewDeliverableHandler(deliveryService, cfg.HTTP.MaxUploadSize)
	portalHandler := handler.NewPortalHandler(projectService, deliveryService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size (uploads carry their own larger bound)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit; multipart uploads need headroom for the artifact itself
	bodyLimit := cfg.HTTP.MaxBodySize
	if cfg.HTTP.MaxUploadSize > bodyLimit {
		bodyLimit = cfg.HTTP.MaxUploadSize
	}
	engine.Use(middleware.BodyLimit(bodyLimit))

	// General API rate limiting (if enabled); the webhook endpoint carries
	// its own per-source limiter inside the handler
	if cfg.HTTP.RateLimitEnabled {
		apiLimiter := ratelimit.NewMemoryLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(apiLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// JWT authentication for operator routes. Webhook and client portal
	// routes stay public: the provider signs its requests, and portal access
	// is keyed by unguessable identifiers.
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/webhooks",
			"/api/v1/portal",
		},
		Logger: log,
	}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Register domain route groups
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(webhookHandler).
		Register(projectHandler).
		Register(deliverableHandler).
		Register(portalHandler).
		Register(systemHandler)
	r.Setup()

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

	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildArtifactStorage selects the object store backing deliverable artifacts
func buildArtifactStorage(cfg *config.Config, log *zap.Logger) (deliveryapp.ArtifactStorage, error) {
	switch cfg.Storage.Provider {
	case "s3":
		s3Store, err := storage.NewS3ArtifactStorage(&cfg.Storage)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s3Store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		log.Info("Artifact storage ready",
			zap.String("provider", "s3"),
			zap.String("bucket", cfg.Storage.Bucket),
		)
		return s3Store, nil
	default:
		log.Warn("Using stub artifact storage; artifacts are held in memory only")
		return storage.NewStubArtifactStorage(log), nil
	}
}

// buildWebhookLimiter picks the counter backend for the webhook ingress limit
func buildWebhookLimiter(cfg *config.Config, log *zap.Logger) ratelimit.Limiter {
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info("Webhook rate limiter using Redis", zap.String("addr", cfg.Redis.Addr()))
		return ratelimit.NewRedisLimiter(client, cfg.HTTP.WebhookRateLimitRequests, cfg.HTTP.WebhookRateLimitWindow, log)
	}
	return ratelimit.NewMemoryLimiter(cfg.HTTP.WebhookRateLimitRequests, cfg.HTTP.WebhookRateLimitWindow)
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
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
