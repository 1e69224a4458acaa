// Package auth implements bearer token authentication for the API.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bnema/acms/internal/boundaries/in"
	"github.com/bnema/acms/internal/domain"
)

// Ensure Service implements in.AuthService.
var _ in.AuthService = (*Service)(nil)

const (
	// DefaultIssuer is the issuer claim for generated tokens.
	DefaultIssuer = "acms"
	// tokenCacheSize bounds the validated-token cache.
	tokenCacheSize = 1024
)

// Config holds the authentication configuration.
type Config struct {
	Enabled     bool
	TokenSecret []byte
	Issuer      string
}

// claims are the JWT claims acms signs.
type claims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// Service implements the AuthService interface.
type Service struct {
	config Config
	cache  *lru.Cache[string, *domain.TokenClaims]
	now    func() time.Time
}

// NewService creates a new auth service. Enabling auth without a secret is
// a configuration error.
func NewService(config Config) (*Service, error) {
	if config.Issuer == "" {
		config.Issuer = DefaultIssuer
	}
	if config.Enabled && len(config.TokenSecret) == 0 {
		return nil, fmt.Errorf("auth is enabled but no token secret is configured")
	}
	cache, err := lru.New[string, *domain.TokenClaims](tokenCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		config: config,
		cache:  cache,
		now:    time.Now,
	}, nil
}

// IsEnabled returns whether authentication is enabled.
func (s *Service) IsEnabled() bool {
	return s.config.Enabled
}

// ValidateToken validates a token and returns its claims. Valid tokens are
// cached until they expire.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*domain.TokenClaims, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "ValidateToken",
	})
	log := zerowrap.FromCtx(ctx)

	key := cacheKey(tokenString)
	if cached, ok := s.cache.Get(key); ok {
		if cached.ExpiresAt.IsZero() || s.now().Before(cached.ExpiresAt) {
			return cached, nil
		}
		s.cache.Remove(key)
		return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
	}

	var c claims
	_, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.config.TokenSecret, nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		log.Debug().Err(err).Msg("token rejected")
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}

	tc := &domain.TokenClaims{
		ID:      c.ID,
		Subject: c.Subject,
		Issuer:  c.Issuer,
		Scopes:  c.Scopes,
	}
	if c.IssuedAt != nil {
		tc.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		tc.ExpiresAt = c.ExpiresAt.Time
	}
	s.cache.Add(key, tc)

	log.Debug().Str("subject", tc.Subject).Msg("token validation successful")
	return tc, nil
}

// cacheKey avoids keeping raw tokens in memory.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateToken mints a token for subject. A zero expiry never expires.
func (s *Service) GenerateToken(ctx context.Context, subject string, scopes []string, expiry time.Duration) (string, error) {
	ctx = zerowrap.CtxWithFields(ctx, map[string]any{
		zerowrap.FieldLayer:   "usecase",
		zerowrap.FieldUseCase: "GenerateToken",
		"subject":             subject,
	})
	log := zerowrap.FromCtx(ctx)

	if subject == "" {
		return "", domain.NewValidationError("subject", subject, "subject cannot be empty")
	}
	if len(s.config.TokenSecret) == 0 {
		return "", fmt.Errorf("no token secret configured")
	}

	now := s.now().UTC()
	c := claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if expiry > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(expiry))
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.config.TokenSecret)
	if err != nil {
		return "", log.WrapErr(err, "failed to sign token")
	}

	log.Info().Str("token_id", c.ID).Dur("expiry", expiry).Msg("token generated")
	return token, nil
}
