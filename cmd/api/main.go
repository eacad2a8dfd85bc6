package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JasimIhsan/MentorsHub-sub002/config"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/cache"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/handlers"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/middleware"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/repository"
	"github.com/JasimIhsan/MentorsHub-sub002/internal/services"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/db"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/httpclient"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/jwt"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/logger"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/metrics"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/objectstore"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/profiling"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/tracing"
	"github.com/JasimIhsan/MentorsHub-sub002/pkg/trigger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// registerSessionRoutes registers the session lifecycle and reschedule
// negotiation routes
func registerSessionRoutes(
	router *gin.Engine,
	cfg *config.Config,
	generalRateLimiter, mutationRateLimiter *middleware.RateLimiter,
	sessionHandler *handlers.SessionHandler,
	rescheduleHandler *handlers.RescheduleHandler,
	tokenManager *jwt.TokenManager,
) {
	actorSession := middleware.ActorSessionMiddleware(tokenManager, cfg.ActorSession.CookieDomain, cfg.ActorSession.CookieSecure)

	sessions := router.Group("/api/v1/sessions")
	sessions.Use(actorSession)

	sessions.POST("", mutationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.Create)
	sessions.GET("", generalRateLimiter.Middleware(), sessionHandler.List)
	sessions.GET("/:id", generalRateLimiter.Middleware(), sessionHandler.Get)
	sessions.POST("/:id/approve", mutationRateLimiter.Middleware(), sessionHandler.Approve)
	sessions.POST("/:id/reject", mutationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), sessionHandler.Reject)
	sessions.POST("/:id/start", mutationRateLimiter.Middleware(), sessionHandler.Start)
	sessions.POST("/:id/complete", mutationRateLimiter.Middleware(), sessionHandler.Complete)
	sessions.POST("/:id/cancel", mutationRateLimiter.Middleware(), sessionHandler.Cancel)
	sessions.POST("/:id/reschedule", mutationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), rescheduleHandler.Open)

	reschedules := router.Group("/api/v1/reschedules")
	reschedules.Use(actorSession)

	reschedules.POST("/:id/counter", mutationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), rescheduleHandler.Counter)
	reschedules.POST("/:id/accept", mutationRateLimiter.Middleware(), middleware.BodySizeLimitMiddleware(100*1024), rescheduleHandler.Accept)

	mentors := router.Group("/api/v1/mentors")
	mentors.Use(actorSession)
	mentors.GET("/:id/availability", generalRateLimiter.Middleware(), sessionHandler.Availability)

	// Service-to-service surface for the booking frontend and wallet
	// service, authenticated by the internal API token instead of a cookie
	internal := router.Group("/api/internal/v1")
	internal.Use(generalRateLimiter.Middleware(), middleware.InternalAPIAuthMiddleware(cfg.Auth.InternalAPIToken))
	internal.GET("/mentors/:id/availability", sessionHandler.Availability)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting MentorsHub sessions API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceNamespace,
		cfg.Observability.ServiceVersion,
		cfg.Observability.ServiceInstanceID,
		cfg.Server.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	// Initialize continuous profiling when enabled
	if cfg.Profiling.Enabled {
		profilerStop, profErr := profiling.InitProfiler(
			cfg.Profiling,
			cfg.Observability.ServiceName,
			cfg.Observability.ServiceNamespace,
			cfg.Observability.ServiceVersion,
			cfg.Observability.ServiceInstanceID,
			cfg.Server.AppEnv,
		)
		if profErr != nil {
			logger.Error("Failed to initialize profiler", zap.Error(profErr))
		} else {
			defer profilerStop()
		}
	}

	// Initialize metrics with service name from config
	metrics.Init(cfg.Observability.ServiceName)

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	// Initialize PostgreSQL connection pool
	pool, err := db.NewPool(context.Background(), db.PoolConfig{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to initialize database connection pool", zap.Error(err))
	}
	defer db.Close(pool)

	// NOTE: Database migrations are run separately via the migrate command

	// Initialize object storage for receipt artifacts
	var receiptStore services.ReceiptStore
	if cfg.ObjectStorage.AccessKeyID != "" && cfg.ObjectStorage.SecretAccessKey != "" {
		storeClient, storeErr := objectstore.NewClient(
			cfg.ObjectStorage.AccessKeyID,
			cfg.ObjectStorage.SecretAccessKey,
			cfg.ObjectStorage.BucketName,
			cfg.ObjectStorage.Endpoint,
			cfg.ObjectStorage.Region,
		)
		if storeErr != nil {
			logger.Fatal("Failed to initialize object storage client", zap.Error(storeErr))
		}
		receiptStore = storeClient
	} else {
		logger.Warn("Object storage not configured, receipts will be skipped")
		receiptStore = noopReceiptStore{}
	}

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(pool)
	rescheduleRepo := repository.NewRescheduleRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Actor roles change rarely, cache lookups in memory
	userCache := cache.NewUserCache(userRepo, time.Duration(cfg.Cache.RoleTTLSeconds)*time.Second)

	// Initialize HTTP client for external API calls
	httpClient := httpclient.NewStandardClient()

	// Outbound collaborators
	notifier := trigger.NewEmitter(cfg.EventTriggers.NotificationWebhookURL, httpClient)
	presence := trigger.NewEmitter(cfg.EventTriggers.PresenceWebhookURL, httpClient)
	wallet := services.NewHTTPWalletGateway(cfg, httpClient)

	// Initialize services
	conflictService := services.NewConflictService(sessionRepo)
	sessionService := services.NewSessionService(sessionRepo, userCache, conflictService, wallet, notifier, presence, receiptStore, cfg)
	rescheduleService := services.NewRescheduleService(sessionRepo, rescheduleRepo, conflictService, notifier, presence)

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(sessionService)
	rescheduleHandler := handlers.NewRescheduleHandler(rescheduleService)
	webhookHandler := handlers.NewWebhookHandler(sessionService)
	healthHandler := handlers.NewHealthHandler(pool)

	tokenManager := jwt.NewTokenManager(cfg.ActorSession.JWTSecret, cfg.ActorSession.JWTIssuer, cfg.ActorSession.TTLHours)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName)) // OpenTelemetry tracing
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// CORS: only allow configured origins
	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "x-internal-sessions-api-auth-token", "x-webhook-secret", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true, // Required for actor session cookies
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters per endpoint class
	generalRateLimiter := middleware.NewRateLimiter(100, 200) // 100 req/sec, burst of 200
	mutationRateLimiter := middleware.NewRateLimiter(10, 20)  // 10 req/sec, burst of 20
	webhookRateLimiter := middleware.NewRateLimiter(50, 100)  // 50 req/sec, burst of 100

	// Utility endpoints (not versioned - operational endpoints)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", generalRateLimiter.Middleware(), gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Inbound wallet webhooks, authenticated by shared secret
	api.POST("/v1/webhooks/payment",
		webhookRateLimiter.Middleware(),
		middleware.BodySizeLimitMiddleware(100*1024),
		middleware.WebhookAuthMiddleware(cfg.Auth.WebhookSecret),
		webhookHandler.PaymentConfirmed)

	// Session and reschedule routes (cookie authenticated)
	registerSessionRoutes(router, cfg, generalRateLimiter, mutationRateLimiter, sessionHandler, rescheduleHandler, tokenManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// noopReceiptStore satisfies services.ReceiptStore when object storage is not
// configured
type noopReceiptStore struct{}

func (noopReceiptStore) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	return key, nil
}
