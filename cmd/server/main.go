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
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ledgerapp "github.com/travelops/backoffice/internal/application/ledger"
	"github.com/travelops/backoffice/internal/infrastructure/auth"
	"github.com/travelops/backoffice/internal/infrastructure/cache"
	"github.com/travelops/backoffice/internal/infrastructure/config"
	"github.com/travelops/backoffice/internal/infrastructure/event"
	"github.com/travelops/backoffice/internal/infrastructure/logger"
	"github.com/travelops/backoffice/internal/infrastructure/persistence"
	"github.com/travelops/backoffice/internal/infrastructure/telemetry"
	"github.com/travelops/backoffice/internal/interfaces/http/handler"
	"github.com/travelops/backoffice/internal/interfaces/http/middleware"
	"github.com/travelops/backoffice/internal/interfaces/http/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Logs bridge first so every later component logs through it
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize OpenTelemetry logs", zap.Error(err))
	}
	log, err := logger.New(logCfg, loggerProvider.ZapCore(zap.InfoLevel))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting travel back-office",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		log.Fatal("Failed to register ledger metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServer,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.SlowQueryThresh = cfg.Database.SlowThreshold
	if db.Driver() == "sqlite" {
		dbTracing.DBSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}

	// Outbox: ledger writes record events in the same transaction, the
	// processor delivers them to in-process subscribers afterwards
	eventSerializer := event.NewEventSerializer()
	event.RegisterLedgerEvents(eventSerializer)
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	store := persistence.NewGormStore(db.DB, outboxPublisher)

	serviceOpts := []ledgerapp.Option{
		ledgerapp.WithMetrics(ledgerMetrics),
		ledgerapp.WithLogger(log),
	}
	receiptService := ledgerapp.NewReceiptService(store, serviceOpts...)
	payableService := ledgerapp.NewPayableService(store, serviceOpts...)
	sourceService := ledgerapp.NewSourceService(store, serviceOpts...)
	originationService := ledgerapp.NewOriginationService(store, serviceOpts...)
	rateService := ledgerapp.NewRateService(store, serviceOpts...)
	queryService := ledgerapp.NewQueryService(store, serviceOpts...)

	eventBus := event.NewInMemoryEventBus(log)
	bookingHandler := event.NewIdempotentHandler(
		ledgerapp.NewBookingConfirmedHandler(originationService, log), idempotencyStore, log,
		event.WithIdempotencyConfig(event.IdempotencyConfig{Enabled: true, TTL: cfg.Ledger.IdempotencyTTL, KeyPrefix: "booking"}),
	)
	shipmentHandler := event.NewIdempotentHandler(
		ledgerapp.NewShipmentCheckpointHandler(originationService, log), idempotencyStore, log,
		event.WithIdempotencyConfig(event.IdempotencyConfig{Enabled: true, TTL: cfg.Ledger.IdempotencyTTL, KeyPrefix: "shipment"}),
	)
	eventBus.Subscribe(bookingHandler)
	eventBus.Subscribe(shipmentHandler)
	log.Info("Event handlers registered",
		zap.Strings("booking_events", bookingHandler.EventTypes()),
		zap.Strings("shipment_events", shipmentHandler.EventTypes()),
	)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	var outboxProcessor *event.OutboxProcessor
	if cfg.Event.ProcessorEnabled {
		outboxProcessor = event.NewOutboxProcessor(
			event.NewGormOutboxRepository(db.DB),
			eventBus,
			eventSerializer,
			event.OutboxProcessorConfig{
				BatchSize:        cfg.Event.BatchSize,
				PollInterval:     cfg.Event.PollInterval,
				CleanupEnabled:   cfg.Event.CleanupEnabled,
				CleanupRetention: cfg.Event.CleanupRetention,
				CleanupInterval:  cfg.Event.CleanupInterval,
			},
			log,
		)
		outboxProcessor.SetObserver(ledgerMetrics)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDKey},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		Meter:   meterProvider.Meter("http.server"),
		Enabled: meterProvider.IsEnabled(),
		Logger:  log,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilingEnabled,
		SkipPaths: []string{"/health"},
	}))

	health := handler.NewHealthHandler(db)
	engine.GET("/health", health.Check)

	jwtService := auth.NewJWTService(cfg.JWT)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	registrars := handler.Routes(handler.Handlers{
		Payments:     handler.NewPaymentHandler(receiptService, queryService),
		Payables:     handler.NewPayableHandler(payableService, queryService),
		Sources:      handler.NewSourceHandler(sourceService),
		Originations: handler.NewOriginationHandler(originationService),
		Rates:        handler.NewRateHandler(rateService),
		Reports:      handler.NewReportHandler(queryService),
	},
		middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			Logger:     log,
		}),
		middleware.TenantMiddlewareWithConfig(middleware.TenantMiddlewareConfig{Logger: log}),
		middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.Ledger.IdempotencyTTL,
			Logger: log,
		}),
	)
	for _, reg := range registrars {
		r.Register(reg)
	}
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if outboxProcessor != nil {
		if err := outboxProcessor.Stop(shutdownCtx); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := idempotencyStore.Close(); err != nil {
		log.Error("Error closing idempotency store", zap.Error(err))
	}
	if err := db.Close(); err != nil {
		log.Error("Error closing database", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited")
	if exitCode != 0 {
		_ = logger.Sync(log)
		os.Exit(exitCode)
	}
}
