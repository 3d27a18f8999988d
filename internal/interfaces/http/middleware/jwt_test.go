package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vendorhub/console/internal/infrastructure/auth"
	"github.com/vendorhub/console/internal/infrastructure/config"
	"github.com/vendorhub/console/internal/interfaces/http/dto"
)

const testJWTSecret = "test-secret-key-at-least-32-chars"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{Secret: testJWTSecret, Issuer: "marketplace-identity"})
}

func mintToken(t *testing.T, mutate func(*auth.Claims)) string {
	t.Helper()
	now := time.Now()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Issuer:    "marketplace-identity",
			Subject:   "operator-7",
			ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		VendorID:  "vendor-42",
		UserID:    "operator-7",
		Username:  "lan.nguyen",
		TokenType: auth.TokenTypeAccess,
	}
	if mutate != nil {
		mutate(claims)
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

type mockRevocations struct {
	mock.Mock
}

func (m *mockRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	args := m.Called(ctx, jti)
	return args.Bool(0), args.Error(1)
}

func (m *mockRevocations) IsUserTokenInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, issuedAt)
	return args.Bool(0), args.Error(1)
}

func jwtRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "up") })
	router.GET("/api/v1/refund-sessions/:sessionId", func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"vendor":   GetJWTVendorID(c),
			"user":     GetJWTUserID(c),
			"username": GetJWTUsername(c),
		})
	})
	return router
}

func authGet(router *gin.Engine, header string) (*httptest.ResponseRecorder, dto.Response) {
	headers := map[string]string{}
	if header != "" {
		headers[AuthHeaderKey] = header
	}
	w := serve(router, http.MethodGet, "/api/v1/refund-sessions/s-1", headers)
	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	router := jwtRouter(DefaultJWTConfig(newTestJWTService()))

	w, _ := authGet(router, BearerPrefix+mintToken(t, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "vendor-42", body["vendor"])
	assert.Equal(t, "operator-7", body["user"])
	assert.Equal(t, "lan.nguyen", body["username"])
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := jwtRouter(DefaultJWTConfig(newTestJWTService()))
	w := serve(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	router := jwtRouter(DefaultJWTConfig(newTestJWTService()))

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"not bearer", "Basic abc", dto.ErrCodeUnauthorized},
		{"empty bearer", "Bearer   ", dto.ErrCodeUnauthorized},
		{"garbage token", "Bearer not.a.jwt", dto.ErrCodeTokenInvalid},
		{"expired", BearerPrefix + mintToken(t, func(c *auth.Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			c.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
		}), dto.ErrCodeTokenExpired},
		{"refresh token", BearerPrefix + mintToken(t, func(c *auth.Claims) { c.TokenType = "refresh" }), dto.ErrCodeTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := authGet(router, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)
		})
	}
}

func TestJWTAuthMiddleware_RevokedToken(t *testing.T) {
	revocations := new(mockRevocations)
	revocations.On("IsRevoked", mock.Anything, "jti-1").Return(true, nil)

	cfg := DefaultJWTConfig(newTestJWTService())
	cfg.Revocations = revocations
	w, resp := authGet(jwtRouter(cfg), BearerPrefix+mintToken(t, nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeTokenRevoked, resp.Error.Code)
	revocations.AssertNotCalled(t, "IsUserTokenInvalidated", mock.Anything, mock.Anything, mock.Anything)
}

func TestJWTAuthMiddleware_UserInvalidated(t *testing.T) {
	revocations := new(mockRevocations)
	revocations.On("IsRevoked", mock.Anything, "jti-1").Return(false, nil)
	revocations.On("IsUserTokenInvalidated", mock.Anything, "operator-7", mock.AnythingOfType("time.Time")).Return(true, nil)

	cfg := DefaultJWTConfig(newTestJWTService())
	cfg.Revocations = revocations
	w, resp := authGet(jwtRouter(cfg), BearerPrefix+mintToken(t, nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, resp.Error.Code)
	revocations.AssertExpectations(t)
}

func TestJWTAuthMiddleware_RevocationLookupFailsOpen(t *testing.T) {
	revocations := new(mockRevocations)
	revocations.On("IsRevoked", mock.Anything, "jti-1").Return(false, errors.New("redis: connection refused"))
	revocations.On("IsUserTokenInvalidated", mock.Anything, "operator-7", mock.Anything).Return(false, errors.New("redis: connection refused"))

	cfg := DefaultJWTConfig(newTestJWTService())
	cfg.Revocations = revocations
	cfg.Logger = zap.NewNop()
	w, _ := authGet(jwtRouter(cfg), BearerPrefix+mintToken(t, nil))

	assert.Equal(t, http.StatusOK, w.Code)
	revocations.AssertExpectations(t)
}

func TestJWTAuthMiddleware_InMemoryRevocations(t *testing.T) {
	list := auth.NewInMemoryRevocationList()
	list.Revoke("jti-revoked", time.Hour)

	cfg := DefaultJWTConfig(newTestJWTService())
	cfg.Revocations = list
	router := jwtRouter(cfg)

	w, _ := authGet(router, BearerPrefix+mintToken(t, func(c *auth.Claims) { c.ID = "jti-revoked" }))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = authGet(router, BearerPrefix+mintToken(t, func(c *auth.Claims) { c.ID = "jti-fresh" }))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuthMiddleware_OnError(t *testing.T) {
	var seen error
	cfg := DefaultJWTConfig(newTestJWTService())
	cfg.OnError = func(c *gin.Context, err error) {
		seen = err
		c.JSON(http.StatusTeapot, gin.H{})
	}

	w, _ := authGet(jwtRouter(cfg), "")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.ErrorIs(t, seen, auth.ErrInvalidToken)
}

func TestGetJWTHelpers_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTVendorID(c))
	assert.Empty(t, GetJWTUsername(c))
}
