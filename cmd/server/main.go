package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/vendorhub/console/docs"
	refundapp "github.com/vendorhub/console/internal/application/refund"
	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/domain/shared"
	"github.com/vendorhub/console/internal/infrastructure/auth"
	"github.com/vendorhub/console/internal/infrastructure/backend"
	"github.com/vendorhub/console/internal/infrastructure/cache"
	"github.com/vendorhub/console/internal/infrastructure/config"
	"github.com/vendorhub/console/internal/infrastructure/event"
	"github.com/vendorhub/console/internal/infrastructure/logger"
	"github.com/vendorhub/console/internal/infrastructure/persistence"
	"github.com/vendorhub/console/internal/infrastructure/telemetry"
	"github.com/vendorhub/console/internal/interfaces/http/handler"
	"github.com/vendorhub/console/internal/interfaces/http/middleware"
	"github.com/vendorhub/console/internal/interfaces/http/router"
)

const serviceVersion = "1.0.0"

//	@title			Vendor Console Refund API
//	@version		1.0
//	@description	Refund processing for marketplace vendor support tickets

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Operator access token. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	// Bootstrap logger for the OTEL providers; replaced once the log bridge exists
	bootLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		bootLog.Fatal("Failed to initialize log export", zap.Error(err))
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: logProvider,
		Level:          logger.ParseLevel(cfg.Log.Level),
	}))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting vendor console",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		Environment:     cfg.App.Env,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	var refundMetrics *telemetry.RefundMetrics
	if meterProvider.IsEnabled() {
		refundMetrics, err = telemetry.NewRefundMetrics(meterProvider.Meter("refund"), log)
		if err != nil {
			log.Error("Refund metrics disabled", zap.Error(err))
			refundMetrics = nil
		}
	}

	backendClient, err := backend.NewClient(backend.Config{
		BaseURL:          cfg.Backend.BaseURL,
		ServiceToken:     cfg.Backend.ServiceToken,
		Timeout:          cfg.Backend.Timeout,
		MaxResponseBytes: cfg.Backend.MaxResponseBytes,
	}, nil)
	if err != nil {
		log.Fatal("Failed to create marketplace client", zap.Error(err))
	}

	// Production runs several instances, so leases must live in Redis
	guardFactory := cache.NewSubmissionGuardFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	)
	guard, err := guardFactory.CreateGuard(ctx)
	if err != nil {
		log.Fatal("Failed to create submission guard", zap.Error(err))
	}

	var (
		revocations auth.RevocationList = auth.NewInMemoryRevocationList()
		redisPinger handler.Pinger
	)
	if redisGuard, ok := guard.(*cache.RedisSubmissionGuard); ok {
		revocations = auth.NewRedisRevocationList(redisGuard.Client())
		redisPinger = redisGuard
	}
	defer closeGuard(guard, log)

	var (
		db         *persistence.Database
		dbPinger   handler.Pinger
		serviceOps []refundapp.ServiceOption
	)
	if refundMetrics != nil {
		serviceOps = append(serviceOps, refundapp.WithMetrics(refundMetrics))
	}
	if cfg.Refund.AuditEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
		dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		dbTracing.DBName = cfg.Database.DBName
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}

		db, err = persistence.NewDatabase(&cfg.Database,
			persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
			persistence.WithStatementLogging(cfg.Telemetry.DBLogFullSQL, cfg.Telemetry.DBSlowQueryThresh),
			persistence.WithTracing(dbTracing),
		)
		if err != nil {
			log.Fatal("Failed to connect to audit database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
		dbPinger = db
		log.Info("Audit database connected")
	}

	eventBus := event.NewInMemoryEventBus(log)

	var submissions refund.SubmissionRepository
	if db != nil {
		submissions = persistence.NewGormRefundSubmissionRepository(db.DB)
		serviceOps = append(serviceOps, refundapp.WithSubmissionHistory(submissions))
		eventBus.Subscribe(refundapp.NewSubmissionAuditHandler(submissions, log))
	}
	if refundMetrics != nil {
		eventBus.Subscribe(refundapp.NewMetricsEventHandler(refundMetrics))
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	refundService := refundapp.NewProcessingService(backendClient, guard, eventBus, log,
		refundapp.ServiceConfig{
			Policy: refund.Policy{
				EligibilityWindow:          cfg.Refund.EligibilityWindow,
				DeliveredStatus:            cfg.Refund.DeliveredStatus,
				SerialCategories:           cfg.Refund.SerialCategories,
				KeepCustomAmountOnLineEdit: cfg.Refund.KeepCustomAmountOnLineEdit,
			},
			SessionTTL:               cfg.Refund.SessionTTL,
			CleanupInterval:          cfg.Refund.SessionCleanupInterval,
			IdentityFetchConcurrency: cfg.Refund.IdentityFetchConcurrency,
			SubmitLeaseTTL:           cfg.Refund.SubmitLeaseTTL,
			HistoryLimit:             cfg.Refund.HistoryLimit,
		},
		serviceOps...,
	)
	refundService.Start()

	if refundMetrics != nil {
		if err := refundMetrics.ObserveOpenSessions(refundService.OpenSessions); err != nil {
			log.Warn("Open session gauge unavailable", zap.Error(err))
		}
	}

	healthOpts := []handler.HealthOption{
		handler.WithOpenSessions(refundService.OpenSessions),
		handler.WithHealthCheck("backend", backendClient),
	}
	if dbPinger != nil {
		healthOpts = append(healthOpts, handler.WithHealthCheck("database", dbPinger))
	}
	if redisPinger != nil {
		healthOpts = append(healthOpts, handler.WithHealthCheck("redis", redisPinger))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tracing := middleware.DefaultTracingConfig()
	tracing.ServiceName = cfg.Telemetry.ServiceName
	tracing.Enabled = cfg.Telemetry.Enabled
	profiling := middleware.DefaultProfilingConfig()
	profiling.Enabled = profiler.IsEnabled()

	engine := router.New(router.Config{
		HTTP: cfg.HTTP,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
		Tracing: tracing,
		Metrics: middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       meterProvider.IsEnabled(),
			Logger:        log,
		},
		Profiling: profiling,
		Logger:    log,
	}, router.Dependencies{
		JWTService:  auth.NewJWTService(cfg.JWT),
		Revocations: revocations,
		Health:      handler.NewHealthHandler(healthOpts...),
		Registrars:  []router.RouteRegistrar{handler.NewRefundSessionHandler(refundService)},
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
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	// Sessions close before the bus stops so their closed events are delivered
	if err := refundService.Shutdown(shutdownCtx); err != nil {
		log.Error("Refund sessions did not close cleanly", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	shutdownTelemetry(shutdownCtx, log, profiler, tracerProvider, meterProvider, logProvider)

	log.Info("Server exited gracefully")
}

func closeGuard(guard shared.LeaseStore, log *zap.Logger) {
	closer, ok := guard.(interface{ Close() error })
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		log.Error("Error closing submission guard", zap.Error(err))
	}
}

func shutdownTelemetry(ctx context.Context, log *zap.Logger, profiler *telemetry.Profiler,
	tp *telemetry.TracerProvider, mp *telemetry.MeterProvider, lp *telemetry.LoggerProvider) {
	if err := profiler.Stop(); err != nil {
		log.Error("Error stopping profiler", zap.Error(err))
	}
	if err := tp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := mp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	// Last, so shutdown errors above still reach the collector
	if err := lp.Shutdown(ctx); err != nil {
		log.Error("Error shutting down log provider", zap.Error(err))
	}
}
