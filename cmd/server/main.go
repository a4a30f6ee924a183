package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	accountapp "github.com/homechef/backend/internal/application/account"
	chatapp "github.com/homechef/backend/internal/application/chat"
	eventapp "github.com/homechef/backend/internal/application/event"
	loyaltyapp "github.com/homechef/backend/internal/application/loyalty"
	menuapp "github.com/homechef/backend/internal/application/menu"
	notificationapp "github.com/homechef/backend/internal/application/notification"
	orderingapp "github.com/homechef/backend/internal/application/ordering"
	routingapp "github.com/homechef/backend/internal/application/routing"
	"github.com/homechef/backend/internal/domain/ordering"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/domain/shared/valueobject"
	"github.com/homechef/backend/internal/infrastructure/auth"
	"github.com/homechef/backend/internal/infrastructure/cache"
	"github.com/homechef/backend/internal/infrastructure/config"
	"github.com/homechef/backend/internal/infrastructure/event"
	"github.com/homechef/backend/internal/infrastructure/logger"
	"github.com/homechef/backend/internal/infrastructure/notification"
	"github.com/homechef/backend/internal/infrastructure/persistence"
	"github.com/homechef/backend/internal/infrastructure/realtime"
	"github.com/homechef/backend/internal/infrastructure/scheduler"
	"github.com/homechef/backend/internal/infrastructure/storage"
	"github.com/homechef/backend/internal/infrastructure/telemetry"
	"github.com/homechef/backend/internal/interfaces/http/dto"
	"github.com/homechef/backend/internal/interfaces/http/handler"
	"github.com/homechef/backend/internal/interfaces/http/middleware"
	"github.com/homechef/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromSettings(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output), cfg.App.Name)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	telemetry.ServiceVersion = version
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting HomeChef backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Telemetry
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, cfg.Telemetry.ProfilingEnabled, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "tracer provider", tracerProvider.Shutdown)

	metricsCfg := telemetryCfg
	metricsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled
	meterProvider, err := telemetry.NewMeterProvider(ctx, metricsCfg, cfg.Telemetry.MetricsInterval, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "meter provider", meterProvider.Shutdown)

	logsCfg := telemetryCfg
	logsCfg.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, logsCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "logger provider", loggerProvider.Shutdown)
	log = loggerProvider.Tee(log, cfg.Telemetry.ServiceName, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
		Tags:            map[string]string{"env": cfg.App.Env, "version": version},
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentGorm(db.DB, telemetry.DBConfig{
		TraceEnabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:       cfg.Database.DBName,
		LogFullSQL:   cfg.Telemetry.DBLogFullSQL,
	}); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		if _, err := telemetry.RegisterPoolMetrics(meterProvider.Meter(), sqlDB); err != nil {
			log.Warn("Failed to register connection pool metrics", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Redis is optional; without it idempotency, session revocation and the
	// realtime fan-out stay in-process
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		redisClient = client
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	deviceRepo := persistence.NewGormDeviceRepository(db.DB)
	dishRepo := persistence.NewGormDishRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	loyaltyRepo := persistence.NewGormLoyaltyRepository(db.DB)
	chatRepo := persistence.NewGormChatRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	accountRepo.SetOutboxEventSaver(outboxPublisher)
	orderRepo.SetOutboxEventSaver(outboxPublisher)
	loyaltyRepo.SetOutboxEventSaver(outboxPublisher)
	chatRepo.SetOutboxEventSaver(outboxPublisher)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	// Object storage for dish images
	var objectStorage menuapp.ObjectStorageService
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(ctx, cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.String("bucket", cfg.Storage.Bucket), zap.Error(err))
		}
		objectStorage = s3Storage
	}

	// Realtime hub
	var hubOpts []realtime.HubOption
	if redisClient != nil {
		hubOpts = append(hubOpts, realtime.WithRedis(redisClient, ""))
	}
	hub := realtime.NewHub(log, hubOpts...)
	if err := hub.Start(ctx); err != nil {
		log.Fatal("Failed to start realtime hub", zap.Error(err))
	}
	defer hub.Stop()

	// Notification channels
	channels := notificationapp.Channels{Realtime: hub}
	if cfg.Notification.PushEnabled() {
		channels.Push = notification.NewHTTPPushGateway(notification.PushGatewayConfig{
			URL:     cfg.Notification.PushGatewayURL,
			APIKey:  cfg.Notification.PushAPIKey,
			Timeout: cfg.Notification.PushTimeout,
		}, log)
	}
	if cfg.Notification.EmailEnabled() {
		sender, err := notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.Notification.SMTPHost,
			Port:     cfg.Notification.SMTPPort,
			Username: cfg.Notification.SMTPUsername,
			Password: cfg.Notification.SMTPPassword,
			From:     cfg.Notification.EmailFrom,
			Language: cfg.Notification.EmailLanguage,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize email sender", zap.Error(err))
		}
		channels.Email = sender
	}

	// Application services
	program, err := cfg.Loyalty.Program()
	if err != nil {
		log.Fatal("Invalid loyalty program", zap.Error(err))
	}
	orderingCfg := orderingConfig(cfg.Ordering)

	accountService := accountapp.NewAccountService(accountRepo, deviceRepo, log)
	dishService := menuapp.NewDishService(dishRepo, accountRepo, objectStorage, log)
	dishService.SetConfig(menuapp.DishServiceConfig{
		Currency:          orderingCfg.Currency,
		UploadURLExpiry:   cfg.Storage.UploadURLExpiry,
		DownloadURLExpiry: cfg.Storage.DownloadURLExpiry,
	})
	loyaltyService := loyaltyapp.NewLoyaltyService(loyaltyRepo, program, log)
	orderService := orderingapp.NewOrderService(txScope, orderRepo, dishRepo, accountRepo, loyaltyService, orderingCfg, log)
	cashOrderService := orderingapp.NewCashOrderService(orderService)
	approvalService := orderingapp.NewOrderApprovalService(orderRepo, accountRepo, orderingCfg, log)
	deliveryService := orderingapp.NewDeliveryService(txScope, orderRepo, accountRepo, orderingCfg, log)
	chatService := chatapp.NewChatService(chatRepo, orderRepo, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, accountRepo, deviceRepo, channels, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	routeService, err := routingapp.NewRouteService(orderRepo, accountRepo, routingapp.Config{
		AverageSpeedKmh: cfg.Routing.AverageSpeedKmh,
		MaxIterations:   cfg.Routing.MaxIterations,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize route service", zap.Error(err))
	}

	// Business metrics
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:           meterProvider.Meter(),
		Logger:          log,
		CollectInterval: cfg.Telemetry.MetricsInterval,
		OrderProvider: telemetry.OrderMetricsProviderFunc(func(ctx context.Context) (map[string]int64, error) {
			counts, err := orderRepo.CountByStatus(ctx)
			if err != nil {
				return nil, err
			}
			out := make(map[string]int64, len(counts))
			for status, n := range counts {
				out[string(status)] = n
			}
			return out, nil
		}),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	orderService.SetBusinessMetrics(businessMetrics)
	approvalService.SetBusinessMetrics(businessMetrics)
	deliveryService.SetBusinessMetrics(businessMetrics)
	notificationService.SetBusinessMetrics(businessMetrics)
	loyaltyService.SetBusinessMetrics(businessMetrics)
	businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
	defer businessMetrics.Stop()

	// Sessions
	var revoker auth.SessionRevoker = auth.NewInMemorySessionRevoker()
	if redisClient != nil {
		revoker = auth.NewRedisSessionRevoker(redisClient)
	}
	jwtService, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize token verifier", zap.Error(err))
	}

	// Event handlers. Each is wrapped so a redelivered outbox entry is
	// handled once.
	eventBus := event.NewInMemoryEventBus(log)
	idempotencyStore := cache.NewIdempotencyStore(redisClient, cfg.App.IsProduction(), log)
	idempotencyCfg := shared.DefaultIdempotencyConfig()
	idempotencyCfg.TTL = cfg.Event.IdempotencyTTL
	eventHandlers := []shared.EventHandler{
		chatapp.NewRoomLifecycleHandler(chatService, log),
		notificationapp.NewOrderEventHandler(notificationService, accountRepo, log),
		notificationapp.NewMessageSentHandler(notificationService, log),
		notificationapp.NewTierChangedHandler(notificationService, log),
		loyaltyapp.NewOrderCompletedHandler(loyaltyService, log),
		loyaltyapp.NewOrderAbortedHandler(loyaltyService, log),
		auth.NewSuspensionHandler(revoker, cfg.JWT.AccessTokenExpiration, log),
	}
	for _, h := range eventHandlers {
		eventBus.Subscribe(event.NewIdempotentHandler(h, idempotencyStore, log,
			event.WithIdempotencyConfig(idempotencyCfg)))
	}
	log.Info("Event handlers registered", zap.Int("count", len(eventHandlers)))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer shutdownWithTimeout(log, "event bus", eventBus.Stop)

	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupRetention: cfg.Event.CleanupRetention,
	}, log)
	if cfg.Event.ProcessorEnabled {
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer shutdownWithTimeout(log, "outbox processor", outboxProcessor.Stop)
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
		)
	}

	// Scheduled jobs
	if cfg.Scheduler.Enabled {
		jobs := scheduler.New(scheduler.Config{JobTimeout: cfg.Scheduler.JobTimeout, Location: time.UTC}, log)
		jobs.SetBusinessMetrics(businessMetrics)
		if err := jobs.RegisterAll(scheduler.Specs{
			ApprovalExpiry: cfg.Scheduler.ApprovalExpirySpec,
			AutoComplete:   cfg.Scheduler.AutoCompleteSpec,
			OutboxCleanup:  cfg.Scheduler.OutboxCleanupSpec,
		}, approvalService, deliveryService, outboxProcessor); err != nil {
			log.Fatal("Failed to register scheduled jobs", zap.Error(err))
		}
		jobs.Start(ctx)
		defer shutdownWithTimeout(log, "scheduler", jobs.Stop)
		log.Info("Scheduler started", zap.Duration("job_timeout", cfg.Scheduler.JobTimeout))
	}

	// HTTP handlers
	handlers := router.Handlers{
		Accounts:      handler.NewAccountHandler(accountService),
		Dishes:        handler.NewDishHandler(dishService),
		Orders:        handler.NewOrderHandler(orderService, cashOrderService),
		Kitchen:       handler.NewKitchenHandler(approvalService),
		Delivery:      handler.NewDeliveryHandler(deliveryService, cashOrderService, routeService),
		Chat:          handler.NewChatHandler(chatService),
		Notifications: handler.NewNotificationHandler(notificationService),
		Loyalty:       handler.NewLoyaltyHandler(loyaltyService),
		Realtime:      handler.NewRealtimeHandler(hub, realtime.Upgrader(cfg.HTTP.CORSAllowOrigins)),
		Outbox:        handler.NewOutboxHandler(outboxService),
	}

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	systemHandler.AddCheck("database", func(ctx context.Context) error { return db.Ping() })
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID, so every later log line and span carries it
	// 2. Recovery
	// 3. Tracing + SpanAttributes
	// 4. Request logging and Prometheus metrics
	// 5. Security headers, CORS and body limit
	// 6. Per-IP rate limit
	// 7. Profiling labels
	skipPaths := []string{"/health", "/metrics"}
	httpMetrics := telemetry.NewHTTPMetrics()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
		SkipPaths:   skipPaths,
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Metrics(httpMetrics))

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.SecureWithConfig(securityCfg))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.RunSweeper(ctx, cfg.HTTP.RateLimitWindow*10)
		engine.Use(middleware.RateLimit(limiter, middleware.KeyByClientIP))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if profiler.IsEnabled() {
		engine.Use(middleware.Profiling(skipPaths...))
	}

	engine.GET("/health", systemHandler.Health)
	engine.GET("/api/v1/ping", systemHandler.Ping)
	if cfg.Telemetry.PrometheusEnabled {
		engine.GET("/metrics", middleware.IPAllowlist(cfg.Telemetry.MetricsAllowedIPs), handler.Metrics(httpMetrics.Registry))
	}

	authenticate := middleware.Authenticate(middleware.AuthConfig{
		Verifier:         jwtService,
		Accounts:         accountRepo,
		Revoker:          revoker,
		Unregistered:     router.UnregisteredRoutes,
		QueryTokenRoutes: router.QueryTokenRoutes,
		Logger:           log,
	})

	routeCount := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.APIGroups(handlers, authenticate)...).
		Setup()
	log.Info("API routes registered", zap.Int("count", routeCount))

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("ROUTE_NOT_FOUND", "Route not found",
			logger.GetRequestID(c.Request.Context())))
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}

// orderingConfig converts the validated ordering settings. Amounts were
// checked by config.Validate, so parsing cannot fail here.
func orderingConfig(c config.OrderingConfig) orderingapp.Config {
	return orderingapp.Config{
		Currency:            valueobject.Currency(c.Currency),
		ApprovalTimeout:     c.ApprovalTimeout,
		AutoCompleteAfter:   c.AutoCompleteAfter,
		MaxCashOrderAmount:  decimal.RequireFromString(c.MaxCashOrderAmount),
		MaxOpenCashOrders:   c.MaxOpenCashOrders,
		MaxActiveDeliveries: c.MaxActiveDeliveries,
		DeliveryFee: ordering.DeliveryFeePolicy{
			Base:  decimal.RequireFromString(c.DeliveryFeeBase),
			PerKm: decimal.RequireFromString(c.DeliveryFeePerKm),
		},
		BatchSize: c.BatchSize,
	}
}

func shutdownWithTimeout(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error stopping "+name, zap.Error(err))
	}
}
