package middleware

import (
	"net/http"
	"strings"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"

	"github.com/bnema/acms/internal/adapters/dto"
	"github.com/bnema/acms/internal/boundaries/in"
	"github.com/bnema/acms/internal/domain"
)

// ClaimsKey is the echo context key holding validated token claims.
const ClaimsKey = "acms.claims"

// BearerAuth requires a valid bearer token when authentication is enabled.
// Validated claims are stored under ClaimsKey.
func BearerAuth(authSvc in.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !authSvc.IsEnabled() {
				return next(c)
			}

			req := c.Request()
			ctx := zerowrap.CtxWithFields(req.Context(), map[string]any{
				zerowrap.FieldLayer:   "adapter",
				zerowrap.FieldAdapter: "http",
				zerowrap.FieldMethod:  req.Method,
				zerowrap.FieldPath:    req.URL.Path,
			})
			log := zerowrap.FromCtx(ctx)

			authHeader := req.Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				log.Debug().Msg("no bearer token provided")
				return unauthorized(c, "missing bearer token")
			}

			claims, err := authSvc.ValidateToken(ctx, strings.TrimSpace(token))
			if err != nil {
				log.Warn().
					Err(err).
					Str(zerowrap.FieldClientIP, c.RealIP()).
					Msg("bearer token validation failed")
				return unauthorized(c, "invalid bearer token")
			}

			log.Debug().Str("subject", claims.Subject).Msg("bearer token authentication successful")
			c.Set(ClaimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims BearerAuth stored, if any.
func ClaimsFrom(c echo.Context) (*domain.TokenClaims, bool) {
	claims, ok := c.Get(ClaimsKey).(*domain.TokenClaims)
	return claims, ok
}

func unauthorized(c echo.Context, message string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer realm="acms"`)
	return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: dto.ErrorBody{
		Kind:    "unauthorized",
		Message: message,
	}})
}
