package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendorhub/console/internal/infrastructure/auth"
	"github.com/vendorhub/console/internal/infrastructure/config"
	"github.com/vendorhub/console/internal/interfaces/http/handler"
	"github.com/vendorhub/console/internal/interfaces/http/middleware"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type vendorEcho struct{}

func (vendorEcho) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetJWTVendorID(c))
	})
}

func token(t *testing.T, vendorID, jti string) string {
	t.Helper()
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   "operator-1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		VendorID: vendorID,
		UserID:   "operator-1",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func testEngine(t *testing.T, mutate func(*Config, *Dependencies)) *gin.Engine {
	t.Helper()
	cfg := Config{
		HTTP: config.HTTPConfig{
			MaxBodySize:      1 << 10,
			RequestTimeout:   5 * time.Second,
			CORSAllowOrigins: []string{"https://console.example.com"},
			CORSAllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			CORSAllowHeaders: []string{"Content-Type", "Authorization"},
		},
		Swagger: middleware.SwaggerConfig{Enabled: false},
	}
	deps := Dependencies{
		JWTService:  auth.NewJWTService(config.JWTConfig{Secret: testSecret}),
		Revocations: auth.NewInMemoryRevocationList(),
		Health:      handler.NewHealthHandler(),
		Registrars:  []RouteRegistrar{vendorEcho{}},
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}
	return New(cfg, deps)
}

func get(engine *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	var order []string
	r := NewRouter(engine, WithAPIVersion("v2")).Use(func(c *gin.Context) {
		order = append(order, "mw")
		c.Next()
	})
	r.Register(vendorEcho{}).Setup()

	w := get(engine, "/api/v2/whoami", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"mw"}, order)

	w = get(engine, "/api/v1/whoami", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_HealthIsPublic(t *testing.T) {
	w := get(testEngine(t, nil), "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestNew_APIRequiresToken(t *testing.T) {
	engine := testEngine(t, nil)

	w := get(engine, "/api/v1/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(engine, "/api/v1/whoami", map[string]string{"Authorization": "Bearer " + token(t, "vendor-5", "jti-1")})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vendor-5", w.Body.String())
}

func TestNew_RevokedTokenRejected(t *testing.T) {
	revocations := auth.NewInMemoryRevocationList()
	revocations.Revoke("jti-revoked", time.Hour)
	engine := testEngine(t, func(_ *Config, d *Dependencies) { d.Revocations = revocations })

	w := get(engine, "/api/v1/whoami", map[string]string{"Authorization": "Bearer " + token(t, "vendor-5", "jti-revoked")})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNew_RateLimitPerVendor(t *testing.T) {
	engine := testEngine(t, func(c *Config, _ *Dependencies) {
		c.HTTP.RateLimitEnabled = true
		c.HTTP.RateLimitRequests = 1
		c.HTTP.RateLimitWindow = time.Minute
		c.HTTP.RateLimitBurst = 1
	})
	first := map[string]string{"Authorization": "Bearer " + token(t, "vendor-a", "jti-a")}
	second := map[string]string{"Authorization": "Bearer " + token(t, "vendor-b", "jti-b")}

	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/whoami", first).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(engine, "/api/v1/whoami", first).Code)
	assert.Equal(t, http.StatusOK, get(engine, "/api/v1/whoami", second).Code)
}

func TestNew_SwaggerDisabled(t *testing.T) {
	w := get(testEngine(t, nil), "/swagger/index.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNew_SwaggerRequiresTokenWhenConfigured(t *testing.T) {
	engine := testEngine(t, func(c *Config, _ *Dependencies) {
		c.Swagger = middleware.SwaggerConfig{Enabled: true, RequireAuth: true}
	})

	w := get(engine, "/swagger/index.html", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(engine, "/swagger/index.html", map[string]string{"Authorization": "Bearer " + token(t, "vendor-5", "jti-1")})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/whoami", nil)
	req.Header.Set("Origin", "https://console.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	testEngine(t, nil).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://console.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
