// Package api implements the HTTP adapter exposing the tool surface: a REST
// style endpoint per tool and a JSON-RPC 2.0 endpoint.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/bnema/acms/internal/adapters/dto"
	"github.com/bnema/acms/internal/adapters/in/http/middleware"
	"github.com/bnema/acms/internal/adapters/out/ratelimit"
	"github.com/bnema/acms/internal/adapters/out/telemetry"
	"github.com/bnema/acms/internal/boundaries/in"
)

// maxRequestSize is the maximum allowed size for request bodies.
const maxRequestSize = 1 << 20

// Services groups the use cases the API drives.
type Services struct {
	Images     in.ImageService
	Containers in.ContainerService
	Networks   in.NetworkService
	Volumes    in.VolumeService
	Builder    in.BuilderService
	System     in.SystemService
	Auth       in.AuthService
}

// Config holds the API server settings. TLS is served when both TLSCertFile
// and TLSKeyFile are set.
type Config struct {
	Addr        string
	TLSCertFile string
	TLSKeyFile  string
	RateLimit   ratelimit.Config
}

// Server is the API HTTP server.
type Server struct {
	echo     *echo.Echo
	services Services
	tools    *registry
	metrics  *telemetry.Metrics
	config   Config
	log      zerowrap.Logger
}

// NewServer builds the echo server with its middleware and routes. metrics
// may be nil, in which case /metrics is not served.
func NewServer(config Config, services Services, metrics *telemetry.Metrics, log zerowrap.Logger) (*Server, error) {
	s := &Server{
		services: services,
		metrics:  metrics,
		config:   config,
		log:      log,
	}

	tools, err := newRegistry(s.catalog())
	if err != nil {
		return nil, err
	}
	s.tools = tools

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleHTTPError

	e.Use(middleware.PanicRecovery(log))
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.SecurityHeaders())
	if metrics != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace:  "acms",
			Subsystem:  "http",
			Registerer: metrics.Registry(),
			Skipper:    skipUnlimited,
		}))
	}
	if config.RateLimit.Enabled {
		store := ratelimit.NewMemoryStore(config.RateLimit, log)
		e.Use(middleware.RateLimit(store, log, skipUnlimited))
	}

	e.GET("/healthz", s.handleHealth)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	authed := middleware.BearerAuth(services.Auth)
	v1 := e.Group("/v1", authed)
	v1.GET("/tools", s.handleListTools)
	v1.POST("/tools/:name", s.handleCallTool)
	e.POST("/rpc", s.handleRPC, authed)

	s.echo = e
	return s, nil
}

// skipUnlimited exempts health checks and scrapes from rate limiting and request
// metrics.
func skipUnlimited(c echo.Context) bool {
	switch c.Path() {
	case "/healthz", "/metrics":
		return true
	}
	return false
}

// Handler exposes the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until Shutdown is called. It returns nil on a clean shutdown.
func (s *Server) Start() error {
	s.log.Info().
		Str(zerowrap.FieldLayer, "adapter").
		Str(zerowrap.FieldAdapter, "http").
		Str("addr", s.config.Addr).
		Bool("tls", s.tlsEnabled()).
		Int("tools", len(s.tools.tools)).
		Msg("API server listening")

	s.echo.Server.ReadHeaderTimeout = 10 * time.Second
	s.echo.TLSServer.ReadHeaderTimeout = 10 * time.Second

	var err error
	if s.tlsEnabled() {
		err = s.echo.StartTLS(s.config.Addr, s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.echo.Start(s.config.Addr)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) tlsEnabled() bool {
	return s.config.TLSCertFile != "" && s.config.TLSKeyFile != ""
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) toolList() dto.ToolsResponse {
	tools := make([]dto.Tool, 0, len(s.tools.tools))
	for _, t := range s.tools.tools {
		tools = append(tools, dto.Tool{
			Name:        t.name,
			Description: t.description,
			InputSchema: t.schema,
		})
	}
	return dto.ToolsResponse{Tools: tools}
}

func (s *Server) handleListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, s.toolList())
}

func (s *Server) handleCallTool(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}

	result, err := s.call(c.Request().Context(), c.Param("name"), body)
	if err != nil {
		return c.JSON(statusFor(kindOf(err)), dto.ErrorResponse{Error: errorBody(err)})
	}
	return c.JSON(http.StatusOK, result)
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestSize+1))
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}
	if len(body) > maxRequestSize {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return body, nil
}

// handleHTTPError renders echo errors (unknown routes, wrong methods) in the
// API error shape.
func (s *Server) handleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	kind := "internal_error"
	switch status {
	case http.StatusNotFound:
		kind = "not_found"
	case http.StatusMethodNotAllowed, http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		kind = "validation_error"
	}

	if err := c.JSON(status, dto.ErrorResponse{Error: dto.ErrorBody{Kind: kind, Message: message}}); err != nil {
		s.log.Debug().Err(err).Msg("failed to write error response")
	}
}
