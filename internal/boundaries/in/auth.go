package in

import (
	"context"
	"time"

	"github.com/bnema/acms/internal/domain"
)

// AuthService defines the contract for API bearer tokens.
type AuthService interface {
	// IsEnabled returns whether requests must carry a token.
	IsEnabled() bool

	// ValidateToken validates a token and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*domain.TokenClaims, error)

	// GenerateToken mints a token for subject. A zero expiry never expires.
	GenerateToken(ctx context.Context, subject string, scopes []string, expiry time.Duration) (string, error)
}
