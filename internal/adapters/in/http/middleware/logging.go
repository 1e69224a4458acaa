// Package middleware provides the echo middleware of the API server.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/bnema/acms/internal/adapters/dto"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = echo.HeaderXRequestID

// RequestLogger logs every request through zerowrap and attaches the logger,
// tagged with the request ID, to the request context for downstream handlers.
func RequestLogger(log zerowrap.Logger) echo.MiddlewareFunc {
	logRequest := echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil {
				event = log.Warn().Err(v.Error)
			}
			event.
				Str(zerowrap.FieldLayer, "adapter").
				Str(zerowrap.FieldAdapter, "http").
				Str("request_id", v.RequestID).
				Str(zerowrap.FieldMethod, v.Method).
				Str(zerowrap.FieldPath, v.URI).
				Str(zerowrap.FieldClientIP, v.RemoteIP).
				Str("user_agent", v.UserAgent).
				Int(zerowrap.FieldStatus, v.Status).
				Dur(zerowrap.FieldDuration, v.Latency).
				Msg("HTTP request")
			return nil
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		logged := logRequest(next)
		return func(c echo.Context) error {
			req := c.Request()
			requestID := req.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = generateRequestID()
				req.Header.Set(RequestIDHeader, requestID)
			}
			c.Response().Header().Set(RequestIDHeader, requestID)

			ctx := zerowrap.WithCtx(req.Context(), log)
			ctx = zerowrap.CtxWithField(ctx, "request_id", requestID)
			c.SetRequest(req.WithContext(ctx))

			return logged(c)
		}
	}
}

// fallbackCounter ensures uniqueness when crypto/rand is unavailable.
var fallbackCounter atomic.Uint64

// generateRequestID creates a random 16-byte hex-encoded request ID.
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x-%x", time.Now().UnixNano(), fallbackCounter.Add(1))
	}
	return hex.EncodeToString(b)
}

// PanicRecovery recovers from handler panics, logs them and answers with an
// internal error.
func PanicRecovery(log zerowrap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					req := c.Request()
					log.Error().
						Str(zerowrap.FieldLayer, "adapter").
						Str(zerowrap.FieldAdapter, "http").
						Interface("panic", r).
						Str(zerowrap.FieldMethod, req.Method).
						Str(zerowrap.FieldPath, req.URL.Path).
						Msg("panic recovered")

					err = c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.ErrorBody{
						Kind:    "internal_error",
						Message: "internal server error",
					}})
				}
			}()
			return next(c)
		}
	}
}
