package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors surfaced to the authentication middleware and usecases.
// ErrTokenExpired is kept distinct so clients can refresh instead of
// re-login.
var (
	ErrInvalidSigningMethod = errors.New("invalid JWT signing method")
	ErrSigningKeyTooShort   = errors.New("HS512 signing key must be at least 64 bytes (512 bits)")
	ErrTokenExpired         = errors.New("JWT token has expired")
	ErrInvalidToken         = errors.New("invalid token")
)

// JWT issues and verifies access tokens for authenticated users.
type JWT interface {
	// Generate creates a signed token carrying the user identity.
	Generate(uid int64, email string) (string, error)
	// Verify validates tokenStr and returns its claims.
	Verify(tokenStr string) (Claims, error)
}

type clocker interface {
	Now() time.Time
}

type generator interface {
	Generate() string
}

type jwtContextKey struct{}

// Config collects the inputs for constructing a JWT implementation:
// the HMAC secret, the iss claim value, the accepted aud values, token
// lifetime, a clock, and a token ID generator.
type Config struct {
	Secret     []byte
	Issuer     string
	Audiences  []string
	TTLMinutes time.Duration
	Clock      clocker
	UUID       generator
}

// Claims combines the registered JWT claims with the user identity payload.
// UserID is serialized as a string to survive JSON number precision limits.
type Claims struct {
	jwt.RegisteredClaims

	UserID    int64  `json:"user_id,string"`
	UserEmail string `json:"user_email"`
}

// GetAuth returns the claims stored in ctx, or nil when the request is
// unauthenticated.
func GetAuth(ctx context.Context) *Claims {
	if c, ok := ctx.Value(jwtContextKey{}).(Claims); ok {
		return &c
	}
	return nil
}

// SetAuth stores verified claims in ctx for downstream handlers.
func SetAuth(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, jwtContextKey{}, c)
}
