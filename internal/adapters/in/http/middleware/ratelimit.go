package middleware

import (
	"net/http"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bnema/acms/internal/adapters/dto"
)

// RateLimit throttles requests per client IP using store. Requests the
// skipper accepts are never limited.
func RateLimit(store echomw.RateLimiterStore, log zerowrap.Logger, skipper echomw.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = echomw.DefaultSkipper
	}
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Skipper: skipper,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: dto.ErrorBody{
				Kind:    "forbidden",
				Message: "unable to identify client",
			}})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			log.Warn().
				Str(zerowrap.FieldLayer, "adapter").
				Str(zerowrap.FieldAdapter, "http").
				Str(zerowrap.FieldClientIP, identifier).
				Str(zerowrap.FieldPath, c.Request().URL.Path).
				Msg("rate limit exceeded")
			return c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: dto.ErrorBody{
				Kind:    "rate_limited",
				Message: "too many requests",
			}})
		},
	})
}
