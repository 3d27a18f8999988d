package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendorhub/console/internal/infrastructure/auth"
	"github.com/vendorhub/console/internal/infrastructure/logger"
	"github.com/vendorhub/console/internal/interfaces/http/dto"
)

// gin context keys set after a successful token check, and the header
// the token is read from
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTVendorIDKey = "jwt_vendor_id"
	JWTUsernameKey = "jwt_username"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig configures JWTAuthMiddlewareWithConfig. JWTService
// is required.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// Revocations is consulted after signature checks. Nil accepts every
	// valid token until it expires.
	Revocations      auth.RevocationList
	SkipPaths        []string
	SkipPathPrefixes []string
	// OnError replaces the default 401 body
	OnError func(c *gin.Context, err error)
	Logger  *zap.Logger
}

// DefaultJWTConfig leaves the health check, metrics and API docs
// unauthenticated. The docs route applies its own check.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService:       jwtService,
		SkipPaths:        []string{"/health", "/metrics"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// JWTAuthMiddlewareWithConfig requires a valid vendor access token on every
// request outside the skip lists and exposes its claims through GetJWTClaims
// and friends.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	a := &authenticator{cfg: cfg, log: cfg.Logger, skip: newPathSet(cfg.SkipPaths, cfg.SkipPathPrefixes)}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a.handle
}

type authenticator struct {
	cfg  JWTMiddlewareConfig
	log  *zap.Logger
	skip pathSet
}

func (a *authenticator) handle(c *gin.Context) {
	if a.skip.match(c.Request.URL.Path) {
		c.Next()
		return
	}

	claims, err := a.authenticate(c)
	if err != nil {
		a.reject(c, err)
		return
	}

	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTVendorIDKey, claims.Vendor())
	c.Set(JWTUsernameKey, claims.Username)

	ctx := c.Request.Context()
	ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
	c.Request = c.Request.WithContext(ctx)

	a.log.Debug("JWT authentication successful",
		zap.String("user_id", claims.UserID),
		zap.String("vendor_id", claims.Vendor()),
	)
	c.Next()
}

func (a *authenticator) authenticate(c *gin.Context) (*auth.Claims, error) {
	header := c.GetHeader(AuthHeaderKey)
	token, found := strings.CutPrefix(header, BearerPrefix)
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return nil, errMissingBearer
	}

	claims, err := a.cfg.JWTService.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	if a.cfg.Revocations != nil && a.revoked(c, claims) {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

// errMissingBearer wraps ErrInvalidToken but is answered with the generic
// unauthorized code, since there was no token to be invalid.
var errMissingBearer = &missingBearerError{}

type missingBearerError struct{}

func (*missingBearerError) Error() string { return "missing or malformed authorization header" }

func (*missingBearerError) Unwrap() error { return auth.ErrInvalidToken }

// revoked checks the token id, then the user wide cutoff. A failed lookup
// is logged and does not reject the token.
func (a *authenticator) revoked(c *gin.Context, claims *auth.Claims) bool {
	ctx := c.Request.Context()
	list := a.cfg.Revocations

	if revoked, err := list.IsRevoked(ctx, claims.ID); err != nil {
		a.log.Error("Failed to check token revocation", zap.String("jti", claims.ID), zap.Error(err))
	} else if revoked {
		return true
	}

	invalidated, err := list.IsUserTokenInvalidated(ctx, claims.UserID, claims.IssuedAtTime())
	if err != nil {
		a.log.Error("Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
		return false
	}
	return invalidated
}

func (a *authenticator) reject(c *gin.Context, err error) {
	if a.cfg.OnError != nil {
		a.cfg.OnError(c, err)
		c.Abort()
		return
	}
	a.log.Warn("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))

	code, msg := authErrorCode(err)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

func authErrorCode(err error) (code, message string) {
	var missing *missingBearerError
	switch {
	case errors.As(err, &missing):
		return dto.ErrCodeUnauthorized, "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingVendorID):
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
	return dto.ErrCodeUnauthorized, "Authentication required"
}

// GetJWTClaims returns the claims of the authenticated request, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(JWTClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string { return c.GetString(JWTUserIDKey) }

// GetJWTVendorID returns the vendor whose refund sessions the caller may use
func GetJWTVendorID(c *gin.Context) string { return c.GetString(JWTVendorIDKey) }

func GetJWTUsername(c *gin.Context) string { return c.GetString(JWTUsernameKey) }
