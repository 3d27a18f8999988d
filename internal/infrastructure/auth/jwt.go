package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vendorhub/console/internal/infrastructure/config"
)

// TokenTypeAccess is the only token type the console accepts
const TokenTypeAccess = "access"

// defaultLeeway absorbs clock skew between the console and the identity service
const defaultLeeway = 30 * time.Second

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingVendorID  = errors.New("missing vendor_id in claims")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims are the operator claims issued by the marketplace identity service
type Claims struct {
	jwt.RegisteredClaims
	VendorID  string `json:"vendor_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type,omitempty"`
}

// Vendor returns the vendor that owns the operator's refund sessions.
// Tokens without a vendor_id claim fall back to the subject.
func (c *Claims) Vendor() string {
	if c.VendorID != "" {
		return c.VendorID
	}
	return c.Subject
}

// IssuedAtTime returns the issued-at time, zero when absent
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt != nil {
		return c.IssuedAt.Time
	}
	return time.Time{}
}

// JWTService verifies HS256 access tokens. The console never issues tokens.
type JWTService struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: defaultLeeway,
	}
}

// ValidateAccessToken parses tokenString and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenInvalidIssuer), errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, ErrInvalidClaims
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.TokenType != "" && claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidTokenType
	}
	if claims.Vendor() == "" {
		return nil, ErrMissingVendorID
	}
	return claims, nil
}
