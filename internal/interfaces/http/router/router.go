package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/vendorhub/console/internal/infrastructure/auth"
	"github.com/vendorhub/console/internal/infrastructure/config"
	"github.com/vendorhub/console/internal/infrastructure/logger"
	"github.com/vendorhub/console/internal/interfaces/http/handler"
	"github.com/vendorhub/console/internal/interfaces/http/middleware"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Use adds middleware that runs for every versioned API route
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, mw...)
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Config holds the settings of the HTTP surface
type Config struct {
	HTTP      config.HTTPConfig
	Swagger   middleware.SwaggerConfig
	Tracing   middleware.TracingConfig
	Metrics   middleware.HTTPMetricsConfig
	Profiling middleware.ProfilingConfig
	Logger    *zap.Logger
}

// Dependencies are the handlers and auth services mounted on the engine
type Dependencies struct {
	JWTService  *auth.JWTService
	Revocations auth.RevocationList
	Health      *handler.HealthHandler
	Registrars  []RouteRegistrar
}

// New builds the gin engine with the middleware chain, the health and docs
// endpoints and the authenticated /api/v1 routes
func New(cfg Config, deps Dependencies) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request id before logging, tracing before anything
	// that reads the span, CORS before body limits so preflights pass.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(cfg.Tracing))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.HTTPMetrics(cfg.Metrics))
	engine.Use(middleware.ProfilingWithConfig(cfg.Profiling))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	if deps.Health != nil {
		engine.GET("/health", deps.Health.Health)
	}

	jwtConfig := middleware.DefaultJWTConfig(deps.JWTService)
	jwtConfig.Revocations = deps.Revocations
	jwtConfig.Logger = log
	authenticate := middleware.JWTAuthMiddlewareWithConfig(jwtConfig)

	// The docs route sits on a skip prefix of the API middleware, so it
	// gets its own token check.
	docsAuth := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:  deps.JWTService,
		Revocations: deps.Revocations,
		Logger:      log,
	})
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg.Swagger, docsAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	r := NewRouter(engine, WithAPIVersion("v1")).Use(authenticate)
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow, cfg.HTTP.RateLimitBurst)
		r.Use(middleware.RateLimitByKey(limiter, middleware.VendorOrIPKey))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
			zap.Int("burst", cfg.HTTP.RateLimitBurst),
		)
	}
	for _, registrar := range deps.Registrars {
		r.Register(registrar)
	}
	r.Setup()

	return engine
}
