package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/zerowrap"
	"github.com/joho/godotenv"

	"github.com/bnema/acms/internal/adapters/in/http/api"
	"github.com/bnema/acms/internal/adapters/out/telemetry"
	"github.com/bnema/acms/internal/usecase/auth"
	"github.com/bnema/acms/pkg/version"
)

// ErrAlreadyRunning is returned when the PID file points at a live process.
var ErrAlreadyRunning = errors.New("acms is already running")

// Run loads configuration, wires every service and serves the API until
// ctx is cancelled or the process receives SIGINT or SIGTERM.
func Run(ctx context.Context, configPath string) error {
	startedAt := time.Now()

	// A missing .env file is fine; values can come from the real environment.
	_ = godotenv.Load()

	v, cfg, err := initConfig(configPath)
	if err != nil {
		return err
	}

	log, cleanup, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	watchLogLevel(v, log)

	ctx = zerowrap.WithCtx(ctx, log)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str(zerowrap.FieldLayer, "app").
		Str("version", version.Version()).
		Str("config", v.ConfigFileUsed()).
		Msg("starting acms")

	if err := checkNotRunning(cfg.Server.DataDir); err != nil {
		return err
	}
	pidFile := createPidFile(cfg.Server.DataDir, log)
	defer removePidFile(pidFile, log)

	tracing, err := telemetry.NewTracing(ctx, cfg.Telemetry, "acms", version.Version())
	if err != nil {
		return log.WrapErr(err, "failed to initialize tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	svc, err := createServices(ctx, cfg, startedAt, log)
	if err != nil {
		return err
	}
	defer svc.close()

	if err := svc.start(ctx); err != nil {
		return err
	}

	if !cfg.Auth.Enabled && !isLoopback(cfg.Server.Addr) {
		log.Warn().Str("addr", cfg.Server.Addr).Msg("auth is disabled on a non-loopback address, every tool is open to the network")
	}

	server, err := api.NewServer(api.Config{
		Addr:        cfg.Server.Addr,
		TLSCertFile: cfg.Server.TLS.CertFile,
		TLSKeyFile:  cfg.Server.TLS.KeyFile,
		RateLimit:   cfg.API.RateLimit,
	}, svc.api(), svc.metrics, log)
	if err != nil {
		return log.WrapErr(err, "failed to create API server")
	}

	return serve(ctx, server, cfg.Server.ShutdownTimeout, log)
}

// isLoopback reports whether addr only listens on the local host.
func isLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

type apiServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs the server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, server apiServer, timeout time.Duration, log zerowrap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return log.WrapErr(err, "API server failed")
		}
		return nil
	case <-ctx.Done():
		log.Info().Str(zerowrap.FieldLayer, "app").Msg("shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("API server shutdown error")
	}
	if err := <-errCh; err != nil {
		return log.WrapErr(err, "API server failed")
	}

	log.Info().Str(zerowrap.FieldLayer, "app").Msg("acms shutdown complete")
	return nil
}

// checkNotRunning refuses to start when another live process owns the PID
// file in dataDir.
func checkNotRunning(dataDir string) error {
	pid, err := readPidFile(pidPath(dataDir))
	if err != nil || pid == os.Getpid() {
		return nil
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return nil
	}
	if err := proc.Signal(syscall.Signal(0)); err != nil {
		return nil
	}
	return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
}

// GenerateToken signs an API token with the configured secret. It works
// whether or not auth is currently enabled on the server.
func GenerateToken(configPath, subject string, scopes []string, expiry time.Duration) (string, error) {
	_ = godotenv.Load()

	_, cfg, err := initConfig(configPath)
	if err != nil {
		return "", err
	}
	if cfg.Auth.TokenSecret == "" {
		return "", errors.New("auth.token_secret is not set")
	}

	svc, err := auth.NewService(auth.Config{
		Enabled:     true,
		TokenSecret: []byte(cfg.Auth.TokenSecret),
		Issuer:      cfg.Auth.Issuer,
	})
	if err != nil {
		return "", err
	}
	return svc.GenerateToken(context.Background(), subject, scopes, expiry)
}
