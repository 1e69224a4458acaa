package container

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/zerowrap"

	"github.com/bnema/acms/internal/domain"
)

const monitorDefaultInterval = 5 * time.Second

// Monitor polls the runtime for containers recorded as running and records
// exits nobody asked for, such as a finite command finishing on its own.
type Monitor struct {
	service  *Service
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func newMonitor(service *Service) *Monitor {
	interval := service.config.MonitorInterval
	if interval <= 0 {
		interval = monitorDefaultInterval
	}
	return &Monitor{service: service, interval: interval}
}

// Start launches the polling loop. A second Start while running is ignored.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	log := zerowrap.FromCtx(ctx)
	log.Info().Dur("interval", m.interval).Msg("container monitor started")

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.check(ctx)
			}
		}
	}(m.done)
}

// Stop cancels the loop and waits for an in-flight pass to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// check runs one pass over every running container.
func (m *Monitor) check(ctx context.Context) {
	containers, err := m.service.store.ListContainers(ctx)
	if err != nil {
		log := zerowrap.FromCtx(ctx)
		log.Warn().Err(err).Msg("monitor: failed to list containers")
		return
	}
	for _, c := range containers {
		if ctx.Err() != nil {
			return
		}
		if c.State == domain.ContainerStateRunning {
			m.checkContainer(ctx, c.ID)
		}
	}
}

// checkContainer records an exit for id when its process is gone and reports
// whether it did. Runtime errors other than not-found leave the record alone.
func (m *Monitor) checkContainer(ctx context.Context, id string) bool {
	s := m.service
	log := zerowrap.FromCtx(ctx).With().Str(zerowrap.FieldEntityID, id).Logger()

	exited, err := func() (bool, error) {
		unlock := s.store.Lock(domain.KindContainer, id)
		defer unlock()

		c, err := s.store.GetContainer(ctx, id)
		if err != nil || c.State != domain.ContainerStateRunning {
			return false, nil
		}
		exitCode, gone := m.exitStatus(ctx, id)
		if !gone {
			return false, nil
		}

		c.State = domain.ContainerStateStopped
		c.ExitCode = exitCode
		c.FinishedAt = time.Now()
		if err := s.store.PutContainer(ctx, c); err != nil {
			return false, err
		}
		log.Info().Int("exit_code", exitCode).Msg("monitor: container exited")
		return true, nil
	}()
	if err != nil {
		log.Warn().Err(err).Msg("monitor: failed to record container exit")
		return false
	}
	if exited {
		s.publish(ctx, domain.EventContainerStopped, id)
	}
	return exited
}

// exitStatus asks the runtime whether id still runs. A container the runtime
// no longer knows counts as exited with code 0.
func (m *Monitor) exitStatus(ctx context.Context, id string) (int, bool) {
	rc, err := m.service.runtime.InspectContainer(ctx, id)
	switch {
	case errors.Is(err, domain.ErrContainerNotFound):
		return 0, true
	case err != nil:
		log := zerowrap.FromCtx(ctx)
		log.Debug().Err(err).Str(zerowrap.FieldEntityID, id).Msg("monitor: failed to inspect container")
		return 0, false
	case rc.Running:
		return 0, false
	default:
		return rc.ExitCode, true
	}
}
