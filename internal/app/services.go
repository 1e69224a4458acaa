package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bnema/zerowrap"

	"github.com/bnema/acms/internal/adapters/in/http/api"
	"github.com/bnema/acms/internal/adapters/out/docker"
	"github.com/bnema/acms/internal/adapters/out/eventbus"
	"github.com/bnema/acms/internal/adapters/out/sandbox"
	"github.com/bnema/acms/internal/adapters/out/store"
	"github.com/bnema/acms/internal/adapters/out/telemetry"
	"github.com/bnema/acms/internal/boundaries/out"
	"github.com/bnema/acms/internal/usecase/auth"
	"github.com/bnema/acms/internal/usecase/batch"
	"github.com/bnema/acms/internal/usecase/builder"
	"github.com/bnema/acms/internal/usecase/container"
	"github.com/bnema/acms/internal/usecase/images"
	"github.com/bnema/acms/internal/usecase/networks"
	"github.com/bnema/acms/internal/usecase/system"
	"github.com/bnema/acms/internal/usecase/volumes"
	"github.com/bnema/acms/pkg/version"
)

const eventBufferSize = 256

// services holds every adapter and use case of a running server.
type services struct {
	runtime  out.ContainerRuntime
	store    *store.Store
	sqlite   *store.SQLite
	eventBus *eventbus.InMemory
	metrics  *telemetry.Metrics

	imageSvc     *images.Service
	containerSvc *container.Service
	networkSvc   *networks.Service
	volumeSvc    *volumes.Service
	builderSvc   *builder.Service
	systemSvc    *system.Service
	authSvc      *auth.Service

	log zerowrap.Logger
}

// createServices wires the runtime, store and use cases from configuration.
func createServices(ctx context.Context, cfg Config, startedAt time.Time, log zerowrap.Logger) (*services, error) {
	svc := &services{log: log}

	runtime, err := createRuntime(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	svc.runtime = runtime

	if err := svc.openStore(ctx, cfg); err != nil {
		return nil, err
	}

	svc.eventBus = eventbus.NewInMemory(eventBufferSize, log)
	if cfg.Metrics.Enabled {
		svc.metrics = telemetry.NewMetrics()
		svc.eventBus.SetMetrics(svc.metrics)
		if err := svc.eventBus.Subscribe(svc.metrics); err != nil {
			svc.close()
			return nil, log.WrapErr(err, "failed to subscribe metrics")
		}
	}

	executor := batch.NewExecutor(cfg.Batch.Concurrency)

	svc.imageSvc = images.NewService(runtime, svc.store, svc.eventBus, executor)
	svc.containerSvc = container.NewService(runtime, svc.store, svc.eventBus, executor, svc.imageSvc, container.Config{
		StopGrace:       cfg.Containers.StopGrace,
		ExecTimeout:     cfg.Containers.ExecTimeout,
		StartTimeout:    cfg.Containers.StartTimeout,
		AutoPull:        cfg.Containers.AutoPull,
		DefaultNetwork:  firstOr(cfg.Networks.Defaults, "default"),
		MonitorInterval: cfg.Containers.MonitorInterval,
	})
	svc.networkSvc = networks.NewService(runtime, svc.store, svc.eventBus, executor, networks.Config{
		Defaults: cfg.Networks.Defaults,
	})
	svc.volumeSvc = volumes.NewService(runtime, svc.store, svc.eventBus, executor, volumes.Config{
		Protected: cfg.Volumes.Protected,
	})
	svc.builderSvc = builder.NewService(runtime, svc.store, svc.eventBus, builder.Config{
		Name:         cfg.Builder.Name,
		Image:        cfg.Builder.Image,
		StartTimeout: cfg.Builder.StartTimeout,
	})
	svc.systemSvc = system.NewService(runtime, svc.store, svc.builderSvc, system.Config{
		Version:         version.Version(),
		Commit:          version.Commit(),
		StartedAt:       startedAt,
		Persistence:     cfg.Store.Persistence,
		LogFile:         resolveLogFilePath(cfg),
		DNSDomains:      cfg.DNS.Domains,
		DNSDefault:      cfg.DNS.Default,
		DefaultRegistry: cfg.Registry.Default,
	})

	svc.authSvc, err = auth.NewService(auth.Config{
		Enabled:     cfg.Auth.Enabled,
		TokenSecret: []byte(cfg.Auth.TokenSecret),
		Issuer:      cfg.Auth.Issuer,
	})
	if err != nil {
		svc.close()
		return nil, log.WrapErr(err, "failed to create auth service")
	}

	return svc, nil
}

// createRuntime picks the container engine and checks its version.
func createRuntime(ctx context.Context, cfg Config, log zerowrap.Logger) (out.ContainerRuntime, error) {
	var runtime out.ContainerRuntime
	switch cfg.Runtime.Driver {
	case "docker":
		rt, err := docker.NewRuntime()
		if err != nil {
			return nil, log.WrapErr(err, "failed to create docker runtime")
		}
		runtime = rt
	default:
		runtime = sandbox.NewRuntime(sandbox.WithDataDir(filepath.Join(cfg.Server.DataDir, "sandbox")))
	}

	if err := runtime.Ping(ctx); err != nil {
		return nil, log.WrapErr(err, "container runtime is not reachable")
	}

	engineVersion, err := runtime.Version(ctx)
	if err != nil {
		return nil, log.WrapErr(err, "failed to read runtime version")
	}
	ok, err := version.Satisfies(engineVersion, cfg.Runtime.MinVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("runtime version %s does not satisfy %q", engineVersion, cfg.Runtime.MinVersion)
	}

	log.Info().
		Str(zerowrap.FieldLayer, "app").
		Str("driver", cfg.Runtime.Driver).
		Str("version", engineVersion).
		Msg("container runtime ready")
	return runtime, nil
}

// openStore creates the resource store, restoring persisted records when
// sqlite persistence is configured.
func (svc *services) openStore(ctx context.Context, cfg Config) error {
	if cfg.Store.Persistence != "sqlite" {
		svc.store = store.New(nil)
		return nil
	}

	db, err := store.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		return svc.log.WrapErr(err, "failed to open sqlite store")
	}
	svc.sqlite = db
	svc.store = store.New(db)
	if err := svc.store.Load(ctx); err != nil {
		svc.close()
		return svc.log.WrapErr(err, "failed to load persisted resources")
	}
	return nil
}

// start brings the background machinery up: the event bus, default
// networks, container and builder reconciliation, then the monitor.
func (svc *services) start(ctx context.Context) error {
	if err := svc.eventBus.Start(); err != nil {
		return svc.log.WrapErr(err, "failed to start event bus")
	}
	if err := svc.networkSvc.EnsureDefaults(ctx); err != nil {
		return svc.log.WrapErr(err, "failed to create default networks")
	}
	if err := svc.containerSvc.Reconcile(ctx); err != nil {
		svc.log.Warn().Err(err).Msg("container reconciliation incomplete")
	}
	if err := svc.builderSvc.Reconcile(ctx); err != nil {
		svc.log.Warn().Err(err).Msg("builder reconciliation incomplete")
	}
	svc.containerSvc.StartMonitor(ctx)
	return nil
}

// close stops background work and releases the store.
func (svc *services) close() {
	if svc.containerSvc != nil {
		svc.containerSvc.StopMonitor()
	}
	if svc.builderSvc != nil {
		svc.builderSvc.Wait()
	}
	if svc.eventBus != nil {
		if err := svc.eventBus.Stop(); err != nil {
			svc.log.Warn().Err(err).Msg("failed to stop event bus")
		}
	}
	if svc.sqlite != nil {
		if err := svc.sqlite.Close(); err != nil {
			svc.log.Warn().Err(err).Msg("failed to close sqlite store")
		}
	}
}

func (svc *services) api() api.Services {
	return api.Services{
		Images:     svc.imageSvc,
		Containers: svc.containerSvc,
		Networks:   svc.networkSvc,
		Volumes:    svc.volumeSvc,
		Builder:    svc.builderSvc,
		System:     svc.systemSvc,
		Auth:       svc.authSvc,
	}
}

func firstOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[0]
}
